package dataset

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/sandhi/pkg/sandhi"
)

func TestRead(t *testing.T) {
	src := strings.Join([]string{
		"देवास्ति,देव,आस्ति,1",
		"रामायण,राम,अयन",       // three fields
		"नरेन्द्र,नर,इन्द्र,x", // flag not an integer
		"महर्षि,महा,ऋषि, 0 ,extra",
		"",
	}, "\n")

	got, stats, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 4, Accepted: 2, Skipped: 2}, stats)
	assert.Equal(t, []sandhi.Example{
		{Span: "देवास्ति", ExpectedFirst: "देव", ExpectedSecond: "आस्ति", Flag: 1},
		{Span: "महर्षि", ExpectedFirst: "महा", ExpectedSecond: "ऋषि", Flag: 0},
	}, got)
}

func TestReadEmpty(t *testing.T) {
	got, stats, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, stats.Accepted)
}

func TestReadFileMissingIsFatal(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "text_input.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "text_input.txt")
	require.NoError(t, os.WriteFile(p, []byte("देवास्ति,देव,आस्ति,1\n"), 0o644))
	got, _, err := ReadFile(p)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "देवास्ति", got[0].Span)
}
