package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/storage"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd := newCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func seedFileBackend(t *testing.T, home string) {
	t.Helper()
	src, err := storage.Open(storage.KindFile, home)
	require.NoError(t, err)
	require.NoError(t, src.Set("pv_dark", []byte("1")))
	require.NoError(t, src.Set("pv_favs", []byte(`["a1b2c3"]`)))
	require.NoError(t, src.Close())
}

func TestMigrateFileToSQLite(t *testing.T) {
	home := t.TempDir()
	seedFileBackend(t, home)

	out := run(t, "", "--home", home, "--yes")
	assert.Contains(t, out, "Copied 2 keys from file to sqlite")

	dst, err := storage.Open(storage.KindSQLite, home)
	require.NoError(t, err)
	defer dst.Close()

	value, ok, err := dst.Get("pv_favs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["a1b2c3"]`, string(value))
}

func TestMigrateCancelled(t *testing.T) {
	home := t.TempDir()
	seedFileBackend(t, home)

	out := run(t, "n\n", "--home", home)
	assert.Contains(t, out, "Migration cancelled")

	dst, err := storage.Open(storage.KindSQLite, home)
	require.NoError(t, err)
	defer dst.Close()
	keys, err := dst.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMigrateEmptySource(t *testing.T) {
	out := run(t, "", "--home", t.TempDir())
	assert.Contains(t, out, "migration not needed")
}

func TestMigrateSameBackend(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"--from", "file", "--to", "file"})
	assert.Error(t, cmd.Execute())
}
