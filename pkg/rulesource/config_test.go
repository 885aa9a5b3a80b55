package rulesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadModeKernelOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, "#!/system/bin/sh\nverbose=1\nhiding_mode=0\n")

	mode, err := LoadMode(path)
	require.NoError(t, err)
	assert.Equal(t, rule.ModeKernelOnly, mode)
}

func TestLoadModeQuotedAndCommented(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, "export hiding_mode=\"0\"  # kernel only\n")

	mode, err := LoadMode(path)
	require.NoError(t, err)
	assert.Equal(t, rule.ModeKernelOnly, mode)
}

func TestLoadModeNonZeroIsHybrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, "hiding_mode=2\n")

	mode, err := LoadMode(path)
	require.NoError(t, err)
	assert.Equal(t, rule.ModeHybrid, mode)
}

func TestLoadModeMissingFile(t *testing.T) {
	mode, err := LoadMode(filepath.Join(t.TempDir(), ConfigFile))
	require.ErrorIs(t, err, ErrConfigNotFound)
	assert.Equal(t, rule.ModeHybrid, mode)
}

func TestLoadModeNotSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, "verbose=1\n")

	mode, err := LoadMode(path)
	require.ErrorIs(t, err, ErrModeNotSet)
	assert.Equal(t, rule.ModeHybrid, mode)
}

func TestLoadModeInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, "hiding_mode=off\n")

	mode, err := LoadMode(path)
	require.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, rule.ModeHybrid, mode)
}

func TestLoadModeEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, "hiding_mode=1\n")
	t.Setenv("NOMOUNT_HIDING_MODE", "0")

	mode, err := LoadMode(path)
	require.NoError(t, err)
	assert.Equal(t, rule.ModeKernelOnly, mode)
}

func TestParseShellVars(t *testing.T) {
	vars, err := ParseShellVars([]byte(`
# comment
if [ -f /x ]; then
  a=1
fi
B='two words'
empty=
9bad=1
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b": "two words", "empty": ""}, vars)
}

func TestParseShellVarsSkipsUnquotableLines(t *testing.T) {
	vars, err := ParseShellVars([]byte("hiding_mode=0\ndescription=don't\nverbose=\"1\"\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hiding_mode": "0", "verbose": "1"}, vars)
}

func TestParseShellVarsFirstAssignmentWins(t *testing.T) {
	vars, err := ParseShellVars([]byte("hiding_mode=0\nhiding_mode=1\nHIDING_MODE=1\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hiding_mode": "0"}, vars)
}

func TestLoadModeKernelOnlySurvivesBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, "hiding_mode=0\ndescription=don't\nhiding_mode=1\n")

	mode, err := LoadMode(path)
	require.NoError(t, err)
	assert.Equal(t, rule.ModeKernelOnly, mode)
}
