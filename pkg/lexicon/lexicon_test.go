package lexicon

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseWordList(t *testing.T) {
	src := "देव_देवः_देवम्\tnoun m\n\nआस्ति verb\n  अपि  adv\nक__ख\n"
	words, err := ParseWordList(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"देव", "देवः", "देवम्", "आस्ति", "अपि", "क", "ख"}, words)
}

func TestLexiconContains(t *testing.T) {
	lex := New("देव", "आस्ति", "देव")
	assert.True(t, lex.Contains("देव"))
	assert.True(t, lex.Contains("आस्ति"))
	assert.False(t, lex.Contains("देवा"))
	assert.False(t, lex.Contains(""))
	assert.Equal(t, 2, lex.Len())
	assert.Equal(t, []string{"आस्ति", "देव"}, lex.Words())

	var empty *Lexicon
	assert.False(t, empty.Contains("देव"))
	assert.Zero(t, empty.Len())
}

func TestLoadUnionsSources(t *testing.T) {
	dir := t.TempDir()
	nouns := writeList(t, dir, "Noun.txt", "देव_देवः x\nनर y\n")
	advs := writeList(t, dir, "Adverb.txt", "अपि\nदेव\n")

	lex, rep := Load(nouns, advs)
	require.NoError(t, rep.Err())
	assert.False(t, rep.Degraded())
	assert.Equal(t, 4, lex.Len())
	assert.Equal(t, []SourceStat{{Path: nouns, Words: 3}, {Path: advs, Words: 2}}, rep.Sources)
}

func TestLoadIdempotent(t *testing.T) {
	dir := t.TempDir()
	p := writeList(t, dir, "Text.txt", "देव_नर\nदेव\nनर_देव\n")

	once, _ := Load(p)
	twice, _ := Load(p, p)
	assert.Equal(t, once.Words(), twice.Words())
}

func TestLoadDegradesOnMissingSource(t *testing.T) {
	dir := t.TempDir()
	ok := writeList(t, dir, "Noun.txt", "देव\n")
	missing := filepath.Join(dir, "Adjective.txt")

	lex, rep := Load(ok, missing)
	assert.True(t, lex.Contains("देव"))
	assert.Equal(t, 1, lex.Len())
	require.True(t, rep.Degraded())
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, missing, rep.Failures[0].Path)

	err := rep.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	var se *SourceError
	assert.True(t, errors.As(err, &se))
}
