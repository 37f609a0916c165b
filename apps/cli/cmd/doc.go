// Package cmd implements the swell CLI using Cobra.
//
// The root command carries the request itself: method and URL as
// positional arguments, with flags for headers, body source, backend
// selection and the cookie jar. A version subcommand prints build
// information.
package cmd
