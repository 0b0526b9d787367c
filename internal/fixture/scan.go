package fixture

import (
	"regexp"
	"strings"
)

// markerWord matches anything that claims to be a marker token.
// Whether it is a known token is decided afterwards.
var markerWord = regexp.MustCompile(`\bPASTE_[A-Z0-9_]*`)

// Marker is one sentinel found in a fixture. Markers are never mutated.
type Marker struct {
	Kind Kind

	// Line and Column are 1-based. Column counts bytes.
	Line   int
	Column int

	// Offset is the byte offset of the comment token in the fixture text.
	Offset int

	// Raw is the comment text with delimiters and surrounding space removed.
	Raw string
}

// Line is one source line without its terminator.
type Line struct {
	Number int // 1-based
	Offset int // byte offset of the first byte of the line
	Text   string
}

// End returns the byte offset just past the line's content.
func (l Line) End() int {
	return l.Offset + len(l.Text)
}

// Blank reports whether the line holds only whitespace.
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// SplitLines splits text on "\n". A trailing "\r" is dropped from each line
// but offsets still refer to the original text.
func SplitLines(text string) []Line {
	var lines []Line
	offset := 0
	for n := 1; offset < len(text); n++ {
		raw := text[offset:]
		next := len(text)
		if end := strings.IndexByte(raw, '\n'); end >= 0 {
			raw = raw[:end]
			next = offset + end + 1
		}
		lines = append(lines, Line{
			Number: n,
			Offset: offset,
			Text:   strings.TrimSuffix(raw, "\r"),
		})
		offset = next
	}
	return lines
}

// Scan returns the line-comment markers in text, in source order.
// A text without markers yields an empty slice and no error.
//
// The returned MalformedMarkerError has no Fixture set; New fills it in.
func Scan(text string) ([]Marker, error) {
	markers := []Marker{}
	var st scanState

	for _, line := range SplitLines(text) {
		col, body, ok := st.lineComment(line.Text)
		if !ok {
			continue
		}

		for _, word := range markerWord.FindAllString(body, -1) {
			kind, known := kindForToken(word)
			if !known {
				return nil, &MalformedMarkerError{
					Line:   line.Number,
					Column: col + 1,
					Token:  word,
					Reason: unknownTokenReason(word),
				}
			}
			markers = append(markers, Marker{
				Kind:   kind,
				Line:   line.Number,
				Column: col + 1,
				Offset: line.Offset + col,
				Raw:    strings.TrimSpace(body),
			})
		}
	}

	return markers, nil
}

func unknownTokenReason(word string) string {
	if strings.HasPrefix(TokenSingleLine, word) || strings.HasPrefix(TokenMultiLine, word) {
		return "truncated marker token"
	}
	return "unrecognized marker token"
}

// scanState is what a line-by-line walk is inside of. Block comments and
// template literals run across lines; ordinary quotes end with the line.
type scanState struct {
	quote   byte
	inBlock bool
}

// lineComment returns the "//" comment on s, if any: the 0-based byte index
// of the token and the text after it. Block comment and string content is
// skipped.
func (st *scanState) lineComment(s string) (col int, body string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]

		if st.inBlock {
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				st.inBlock = false
				i++
			}
			continue
		}
		if st.quote != 0 {
			if c == '\\' {
				i++
			} else if c == st.quote {
				st.quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'' || c == '`':
			st.quote = c
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			return i, s[i+2:], true
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			st.inBlock = true
			i++
		}
	}

	if st.quote == '"' || st.quote == '\'' {
		st.quote = 0
	}
	return 0, "", false
}
