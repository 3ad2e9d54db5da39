package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanagra-lang/tanagra/config"
)

func TestLoad_MissingPathReturnsBase(t *testing.T) {
	base := config.Default()
	got, err := config.Load("", base)
	require.NoError(t, err)
	require.Equal(t, base, got)

	got, err = config.Load(filepath.Join(t.TempDir(), "does-not-exist.toml"), base)
	require.NoError(t, err)
	require.Equal(t, base, got)
}

func TestLoad_OverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tanagra.toml")
	require.NoError(t, os.WriteFile(path, []byte("expect = 1\n"), 0o644))

	base := config.Options{CompactReduces: true, Expect: 0}
	got, err := config.Load(path, base)
	require.NoError(t, err)
	require.True(t, got.CompactReduces)
	require.Equal(t, 1, got.Expect)
}

func TestLoad_BadTOMLIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tanagra.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid = = toml"), 0o644))

	_, err := config.Load(path, config.Default())
	require.Error(t, err)
}
