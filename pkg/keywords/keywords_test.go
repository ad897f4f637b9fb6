package keywords

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "flickrcrawler/pkg/errors"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"one per line", "cat\ndog\nbird\n", []string{"cat", "dog", "bird"}},
		{"several per row", "cat, dog\nbird", []string{"cat", "dog", "bird"}},
		{"quoted with comma", `"new york, skyline",bridge`, []string{"new york, skyline", "bridge"}},
		{"blank fields and comments", "# animals\ncat,,\n\n ,dog\n", []string{"cat", "dog"}},
		{"duplicates kept", "cat\ncat\n", []string{"cat", "cat"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(strings.NewReader("\"unterminated\n"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
}

func TestMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.csv")
	require.NoError(t, os.WriteFile(path, []byte("owl\nfox\n"), 0644))

	got, err := Merge([]string{" cat ", ""}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "owl", "fox"}, got)

	got, err = Merge([]string{"cat"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, got)

	_, err = Merge(nil, filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
}
