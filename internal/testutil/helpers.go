package testutil

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// BuildZip assembles an in-memory zip archive from entry name to content.
// Entry order follows Go's map iteration and is not deterministic; use
// BuildZipOrdered when order matters.
func BuildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	contents := make([]string, len(names))
	for i, name := range names {
		contents[i] = entries[name]
	}
	return BuildZipOrdered(t, names, contents)
}

// BuildZipOrdered assembles an in-memory zip archive with entries written in
// the given order. Names ending in "/" become directory entries.
func BuildZipOrdered(t *testing.T, names []string, contents []string) []byte {
	t.Helper()
	require.Equal(t, len(names), len(contents))

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i, name := range names {
		if len(name) > 0 && name[len(name)-1] == '/' {
			_, err := w.Create(name)
			require.NoError(t, err)
			continue
		}
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(contents[i]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
