// Package fetch implements the HTTP fetcher collaborator of the traversal
// engine. It issues plain GET requests, gates responses on status and
// content type, caps body sizes, and optionally dials through a SOCKS5
// proxy.
package fetch
