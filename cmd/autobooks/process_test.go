package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectInvoiceFilesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.pdf"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o750))

	files, err := collectInvoiceFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", filepath.Base(files[0]), "files are sorted")
	assert.Equal(t, "b.txt", filepath.Base(files[1]))
}

func TestCollectInvoiceFilesSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	files, err := collectInvoiceFiles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestCollectInvoiceFilesMissingPath(t *testing.T) {
	_, err := collectInvoiceFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestVendorFromFilename(t *testing.T) {
	assert.Equal(t, "acme rent co", vendorFromFilename("/inbox/acme_rent_co.txt"))
	assert.Equal(t, "big corp", vendorFromFilename("big-corp.txt"))
}

func TestBuildFilter(t *testing.T) {
	filter, err := buildFilter("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), filter.Start)
	assert.True(t, filter.End.After(time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)),
		"end date covers the whole day")

	_, err = buildFilter("31/01/2024", "")
	assert.Error(t, err)

	empty, err := buildFilter("", "")
	require.NoError(t, err)
	assert.True(t, empty.Start.IsZero())
	assert.True(t, empty.End.IsZero())
}
