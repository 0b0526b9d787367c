package synth

// lexState tracks what a line-by-line walk is inside of. Block comments and
// template literals survive line ends; ordinary quotes do not.
type lexState struct {
	quote   byte
	inBlock bool
}

// code calls fn for each byte of s that is code rather than string or comment
// content. fn returns false to stop the walk for this line.
func (st *lexState) code(s string, fn func(i int, c byte) bool) {
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
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			return
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			st.inBlock = true
			i++
			continue
		case c == '"' || c == '\'' || c == '`':
			st.quote = c
			continue
		}

		if !fn(i, c) {
			return
		}
	}

	if st.quote == '"' || st.quote == '\'' {
		st.quote = 0
	}
}

func isOpener(c byte) bool {
	return c == '(' || c == '[' || c == '{'
}

func isCloser(c byte) bool {
	return c == ')' || c == ']' || c == '}'
}
