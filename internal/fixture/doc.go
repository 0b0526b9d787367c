// Package fixture loads trigger fixtures and scans them for sentinel markers.
//
// A fixture is an ordinary source file with comment markers embedded in it.
// Each marker names the way the code right after it is supposed to have
// entered the document:
//
//	// PASTE_SINGLE_LINE_MARKER   the next non-blank line was pasted as one line
//	// PASTE_MULTI_LINE_MARKER    the next block was pasted in one go
//
// Accepted suggestions carry no comment. A fixture whose file name contains
// "accept-trigger" gets one AcceptTrigger marker anchored at the start of the
// file; the synth package locates the accepted span.
//
// # Scanning Rules
//
//   - Matching is line-oriented and case-sensitive.
//   - Only line comments ("//") are searched. String literals, template
//     literals and block comments are skipped, including ones that span lines.
//   - A marker's position is the start of its "//" token.
//   - Zero markers is not an error.
//   - A PASTE_* word in a line comment that is not a known token is a
//     MalformedMarkerError.
package fixture
