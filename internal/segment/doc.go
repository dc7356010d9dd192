// Package segment edits a segment of a text file.
//
// Three modes are supported:
//   - find_replace: replace the first or every match of a regular expression
//   - block: replace the text between a start and an end marker
//   - line_range: replace a 1-based range of lines
//
// All modes operate on newline-normalized content (CRLF and CR become LF),
// and a file is only rewritten when the edit matched something.
package segment
