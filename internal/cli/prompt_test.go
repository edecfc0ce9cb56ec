package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dupes/internal/dupes"
)

func TestParseYesNo(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]bool{"yes": true, "Y": true, " no ": false, "n": false} {
		got, err := ParseYesNo(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "maybe", "yess", "1"} {
		_, err := ParseYesNo(input)
		require.Error(t, err, input)
	}
}

func TestAsk_RetriesUntilValid(t *testing.T) {
	t.Parallel()

	var out strings.Builder

	p := newPrompter(strings.NewReader("3\nup\n2\n"), &out)

	order, err := ask(p, "Enter a sorting option:", "Wrong option.", dupes.ParseSortOrder)
	require.NoError(t, err)
	assert.Equal(t, dupes.Ascending, order)

	assert.Equal(t, 1, strings.Count(out.String(), "Enter a sorting option:"))
	assert.Equal(t, 2, strings.Count(out.String(), "Wrong option."))
}

func TestPrompter_LineWithoutNewline(t *testing.T) {
	t.Parallel()

	p := newPrompter(strings.NewReader(".jpg"), io.Discard)

	line, err := p.line("Enter file format:")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", line)

	_, err = p.line("again")
	require.ErrorIs(t, err, io.EOF)
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	ok, err := newPrompter(strings.NewReader("what\nyes\r\n"), io.Discard).confirm("Check for duplicates?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = newPrompter(strings.NewReader("maybe\n"), io.Discard).confirm("Delete files?")
	require.NoError(t, err)
	assert.False(t, ok, "exhausted input counts as no")
}
