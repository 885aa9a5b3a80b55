package rule

import "errors"

var (
	ErrEmptyPath             = errors.New("path is empty")
	ErrPathTooLong           = errors.New("path exceeds maximum length")
	ErrPathDelimiter         = errors.New("path contains a delimiter")
	ErrUnknownClassification = errors.New("unknown classification")
)
