package companion

import "errors"

var (
	ErrListen   = errors.New("companion listen")
	ErrPeerCred = errors.New("read peer credentials")
)
