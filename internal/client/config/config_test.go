package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("server", "", "")
	fs.Duration("timeout", 0, "")
	fs.String("state", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	c, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:50051", c.Server)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.NotEmpty(t, c.State)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server: file:1\ntimeout: 3s\nstate: /tmp/file.db\n"), 0o600))

	c, err := Load(nil, file)
	require.NoError(t, err)
	assert.Equal(t, "file:1", c.Server)
	assert.Equal(t, 3*time.Second, c.Timeout)

	t.Setenv("VAULTCTL_SERVER", "env:2")
	c, err = Load(nil, file)
	require.NoError(t, err)
	assert.Equal(t, "env:2", c.Server)
	assert.Equal(t, "/tmp/file.db", c.State)

	fs := flagSet()
	require.NoError(t, fs.Parse([]string{"--server", "flag:3"}))
	c, err = Load(fs, file)
	require.NoError(t, err)
	assert.Equal(t, "flag:3", c.Server)
	assert.Equal(t, 3*time.Second, c.Timeout, "unset flag keeps file value")
}

func TestLoad_FindsFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vaultctl.yaml"), []byte("server: cwd:9\n"), 0o600))

	c, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "cwd:9", c.Server)
}

func TestLoad_MalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server: [unclosed\n"), 0o600))

	_, err := Load(nil, file)
	assert.Error(t, err)
}
