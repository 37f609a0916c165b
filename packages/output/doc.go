// Package output formats the HTTP response for the terminal.
//
// Supported output formats:
//   - Text: colored status line, sorted headers and a pretty-printed
//     body when stdout is a terminal; raw body bytes when piped
//   - JSON: a single machine-readable document with status, headers,
//     body and timing
package output
