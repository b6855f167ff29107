// Package http exposes the clipboard engine over a JSON API.
//
// Pages travel as HTML strings inside JSON bodies. The scan and overlay
// endpoints also take a raw text/html body, in which case the charset is
// taken from the Content-Type header or sniffed. Bodies that do not look
// like markup are rejected before parsing.
//
// Routes:
//
//	GET    /health
//	GET    /metrics
//	POST   /v1/scan
//	POST   /v1/overlay
//	POST   /v1/clipboard           copy a page
//	GET    /v1/clipboard           current snapshot
//	DELETE /v1/clipboard
//	POST   /v1/fill
//	GET    /v1/records/:identifier
//	POST   /v1/records/:identifier
//	GET    /v1/services
//	POST   /v1/tools/:id
package http
