// Package core provides the filesystem tools.
//
// Tools:
//   - read_file: read a file, optionally a line range
//   - write_file: write content, creating parent directories
//   - delete_file: delete a file
//   - mkdir: create a directory
//   - stat_file: size, type and modification time
//   - list_directory: list files, skipping VCS and package directories
//   - change_directory: move the tool session's working directory
//   - grep: find lines matching a regular expression
//   - edit_file_segment: find_replace, block or line_range edits
//   - locate_symbol: line range of a declaration
//
// Every tool resolves relative paths against the Env's working directory
// and returns a JSON object.
package core
