// Package backend provides the swappable HTTP client implementations
// behind the -c flag.
//
// Available backends:
//   - std: the standard library's net/http with a tuned transport
//   - resty: go-resty/resty
//   - fast: valyala/fasthttp
//
// All three accept the same Request and produce the same Response, so
// the rest of the tool never cares which one ran.
package backend
