package codegen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), "{}")
	writeFile(t, filepath.Join(dir, "a.json"), "{}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, "nested", "c.json"), "{}")

	files, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, files)

	files, err = Discover(dir, ".txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)

	// a file is taken as is, whatever its extension
	files, err = Discover(filepath.Join(dir, "notes.txt"), ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)

	_, err = Discover(filepath.Join(dir, "missing"), "")
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestDiscover_Empty(t *testing.T) {
	files, err := Discover(t.TempDir(), ".json")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "services.txt")
	abs := filepath.Join(t.TempDir(), "abs.json")
	writeFile(t, manifest, "# kRPC services\n\nspace_center.json\n  sub/ui.json  \n"+abs+"\n")

	files, err := ReadManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "space_center.json"),
		filepath.Join(dir, "sub", "ui.json"),
		abs,
	}, files)
}

func TestReadManifest_Duplicate(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "services.txt")
	writeFile(t, manifest, "a.json\n./a.json\n")

	_, err := ReadManifest(manifest)
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), "{}")
	manifest := filepath.Join(dir, "list.txt")
	writeFile(t, manifest, "z.json\n")

	files, err := Inputs(dir, "", ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json")}, files)

	files, err = Inputs(dir, manifest, ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "z.json")}, files)
}
