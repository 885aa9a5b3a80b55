package rule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	ok := Rule{VirtualPath: "/system/fonts/Roboto.ttf", RealPath: "/data/adb/modules/f/system/fonts/Roboto.ttf"}
	require.NoError(t, ok.Validate())

	err := Rule{VirtualPath: "", RealPath: "/x"}.Validate()
	require.ErrorIs(t, err, ErrEmptyPath)

	err = Rule{VirtualPath: "/x", RealPath: ""}.Validate()
	require.ErrorIs(t, err, ErrEmptyPath)
	assert.Contains(t, err.Error(), "real path")

	long := "/" + strings.Repeat("a", MaxPathLen-1)
	err = Rule{VirtualPath: long, RealPath: "/x"}.Validate()
	require.ErrorIs(t, err, ErrPathTooLong)

	justFits := "/" + strings.Repeat("a", MaxPathLen-2)
	require.NoError(t, Rule{VirtualPath: justFits, RealPath: "/x"}.Validate())

	err = Rule{VirtualPath: "/a|b", RealPath: "/x"}.Validate()
	require.ErrorIs(t, err, ErrPathDelimiter)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, Config, Coerce(6))
	assert.Equal(t, Font, Coerce(2))
	assert.Equal(t, Unknown, Coerce(7))
	assert.Equal(t, Unknown, Coerce(-1))
}

func TestParseClassification(t *testing.T) {
	c, err := ParseClassification("Font")
	require.NoError(t, err)
	assert.Equal(t, Font, c)

	c, err = ParseClassification("5")
	require.NoError(t, err)
	assert.Equal(t, Framework, c)

	_, err = ParseClassification("bogus")
	require.ErrorIs(t, err, ErrUnknownClassification)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "library", Library.String())
	assert.Equal(t, "classification(9)", Classification(9).String())
	assert.Equal(t, "hybrid", ModeHybrid.String())
	assert.Equal(t, "kernel-only", ModeKernelOnly.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
