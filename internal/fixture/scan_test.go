package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fixtures", "js", name))
	require.NoError(t, err)
	return string(data)
}

func TestScan_PasteTriggerFixture(t *testing.T) {
	text := readFixture(t, "paste-trigger.js")

	markers, err := Scan(text)
	require.NoError(t, err)
	require.Len(t, markers, 2)

	single := markers[0]
	assert.Equal(t, SingleLinePaste, single.Kind)
	assert.Equal(t, 7, single.Line)
	assert.Equal(t, 3, single.Column)
	assert.Equal(t, strings.Index(text, "// PASTE_SINGLE_LINE_MARKER"), single.Offset)
	assert.Equal(t, TokenSingleLine, single.Raw)

	multi := markers[1]
	assert.Equal(t, MultiLinePaste, multi.Kind)
	assert.Equal(t, 11, multi.Line)
	assert.Equal(t, 3, multi.Column)
	assert.Equal(t, strings.Index(text, "// PASTE_MULTI_LINE_MARKER"), multi.Offset)
}

func TestScan_NoMarkers(t *testing.T) {
	markers, err := Scan(readFixture(t, "player.js"))
	require.NoError(t, err)
	assert.NotNil(t, markers)
	assert.Empty(t, markers)
}

func TestScan_EmptyText(t *testing.T) {
	markers, err := Scan("")
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestScan_IgnoresBlockComments(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"single line", "f() {\n  /* PASTE_MULTI_LINE_MARKER */\n  g(1);\n}\n"},
		{"doc block", "/**\n * PASTE_SINGLE_LINE_MARKER\n * PASTE_TRIPLE\n */\nx();\n"},
		{"unclosed", "x();\n/* PASTE_SINGLE_LINE_MARKER\n"},
		{"line token inside block", "/*\n// PASTE_SINGLE_LINE_MARKER\n*/\ny();\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markers, err := Scan(tt.text)
			require.NoError(t, err)
			assert.Empty(t, markers)
		})
	}
}

func TestScan_LineCommentAfterBlockComment(t *testing.T) {
	text := "/* a\n b */ x(); // PASTE_SINGLE_LINE_MARKER\ny();\n"

	markers, err := Scan(text)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, 2, markers[0].Line)
	assert.Equal(t, 12, markers[0].Column)
	assert.Equal(t, TokenSingleLine, markers[0].Raw)
}

func TestScan_TemplateLiteralSpansLines(t *testing.T) {
	text := "const s = `\n// PASTE_SINGLE_LINE_MARKER\n`;\n// PASTE_MULTI_LINE_MARKER\nf(\n  1\n);\n"

	markers, err := Scan(text)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, MultiLinePaste, markers[0].Kind)
	assert.Equal(t, 4, markers[0].Line)
}

func TestScan_QuoteEndsWithLine(t *testing.T) {
	text := "const s = 'unterminated\n// PASTE_SINGLE_LINE_MARKER\nx();\n"

	markers, err := Scan(text)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, 2, markers[0].Line)
}

func TestScan_IgnoresTokensOutsideComments(t *testing.T) {
	text := strings.Join([]string{
		`const a = "// PASTE_SINGLE_LINE_MARKER";`,
		"const b = 'PASTE_MULTI_LINE_MARKER';",
		"const PASTE_SINGLE_LINE_MARKER = 1;",
		"",
	}, "\n")

	markers, err := Scan(text)
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestScan_CommentAfterCode(t *testing.T) {
	text := "x(); // PASTE_SINGLE_LINE_MARKER\ny();\n"

	markers, err := Scan(text)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, 6, markers[0].Column)
	assert.Equal(t, 5, markers[0].Offset)
}

func TestScan_MalformedMarkers(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		token  string
		reason string
		line   int
	}{
		{
			name:   "truncated single",
			text:   "a();\n// PASTE_SINGLE_LINE\nb();\n",
			token:  "PASTE_SINGLE_LINE",
			reason: "truncated marker token",
			line:   2,
		},
		{
			name:   "truncated multi",
			text:   "// PASTE_MULTI\n",
			token:  "PASTE_MULTI",
			reason: "truncated marker token",
			line:   1,
		},
		{
			name:   "unrecognized",
			text:   "// PASTE_TRIPLE_LINE_MARKER\n",
			token:  "PASTE_TRIPLE_LINE_MARKER",
			reason: "unrecognized marker token",
			line:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markers, err := Scan(tt.text)
			require.Error(t, err)
			assert.Nil(t, markers)

			var malformed *MalformedMarkerError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.token, malformed.Token)
			assert.Equal(t, tt.reason, malformed.Reason)
			assert.Equal(t, tt.line, malformed.Line)
		})
	}
}

func TestScan_MultiLineBlockComment(t *testing.T) {
	text := "/*\n * notes\n */\n// PASTE_SINGLE_LINE_MARKER\nx();\n"

	markers, err := Scan(text)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, 4, markers[0].Line)
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("a\r\n\r\n  bc\nd")
	require.Len(t, lines, 4)

	assert.Equal(t, Line{Number: 1, Offset: 0, Text: "a"}, lines[0])
	assert.Equal(t, Line{Number: 2, Offset: 3, Text: ""}, lines[1])
	assert.Equal(t, Line{Number: 3, Offset: 5, Text: "  bc"}, lines[2])
	assert.Equal(t, Line{Number: 4, Offset: 10, Text: "d"}, lines[3])

	assert.True(t, lines[1].Blank())
	assert.False(t, lines[2].Blank())
	assert.Equal(t, 9, lines[2].End())
}

func TestSplitLines_TrailingNewline(t *testing.T) {
	lines := SplitLines("a\nb\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[1].Text)
}
