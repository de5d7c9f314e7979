package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	typesplan "github.com/Voltaic314/DeskSweep/code/types/plan"
)

func TestParseBasicPlan(t *testing.T) {
	doc := `
# reorganize the desktop
MKDIR /Documents
MOVE /a.txt -> /Documents/a.txt

MOVE b.txt /Documents/b.txt
RENAME /old.txt /new.txt
`
	ops, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, ops, 4)

	assert.Equal(t, typesplan.OpMkdir, ops[0].Kind)
	assert.Equal(t, "/Documents", ops[0].Destination)

	assert.Equal(t, typesplan.OpMove, ops[1].Kind)
	assert.Equal(t, "/a.txt", ops[1].Source)
	assert.Equal(t, "/Documents/a.txt", ops[1].Destination)

	// bare form without the arrow
	assert.Equal(t, "/b.txt", ops[2].Source)
	assert.Equal(t, "/Documents/b.txt", ops[2].Destination)

	// RENAME is just a move
	assert.Equal(t, typesplan.OpMove, ops[3].Kind)
	assert.Equal(t, "/old.txt", ops[3].Source)
	assert.Equal(t, "/new.txt", ops[3].Destination)

	for i, op := range ops {
		assert.Equal(t, i, op.SequenceIndex)
	}
}

func TestParseQuotedPaths(t *testing.T) {
	ops, err := Parse(`MOVE "My Old File.txt" -> "Documents/My Old File.txt"`)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "/My Old File.txt", ops[0].Source)
	assert.Equal(t, "/Documents/My Old File.txt", ops[0].Destination)
}

func TestParseCommandIsCaseInsensitive(t *testing.T) {
	ops, err := Parse("move /a /b\nmkdir /c")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, typesplan.OpMove, ops[0].Kind)
	assert.Equal(t, typesplan.OpMkdir, ops[1].Kind)
}

func TestParseFailsOnFirstBadLine(t *testing.T) {
	doc := "MKDIR /ok\nFROB /x\nMOVE /a -> /b"
	_, err := Parse(doc)
	require.Error(t, err)

	serr, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, 2, serr.Line)
	assert.Contains(t, serr.Reason, "unknown command")
}

func TestParseArityErrors(t *testing.T) {
	for _, doc := range []string{
		"MOVE /only-one",
		"MOVE /a -> /b -> /c",
		"MKDIR /a /b",
		"RENAME /a",
	} {
		_, err := Parse(doc)
		require.Error(t, err, doc)
		_, ok := err.(*SyntaxError)
		assert.True(t, ok, doc)
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(`MOVE "half quoted -> /b`)
	require.Error(t, err)
	serr, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Contains(t, serr.Reason, "unterminated quote")
}

func TestParseRejectsEscapingPaths(t *testing.T) {
	_, err := Parse("MOVE ../outside.txt -> /in.txt")
	require.Error(t, err)
	serr, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Contains(t, serr.Reason, "escapes")
}

func TestParseEmptyDocument(t *testing.T) {
	ops, err := Parse("\n# nothing but comments\n\n")
	require.NoError(t, err)
	assert.Empty(t, ops)
}
