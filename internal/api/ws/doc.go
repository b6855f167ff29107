/*
Package ws streams fills over a WebSocket.

A client opens /ws/fill and sends JSON messages:

	{"type": "copy", "html": "...", "source_url": "https://..."}
	{"type": "fill", "html": "...", "snapshot": {...}}
	{"type": "ping"}

A fill answers with one "plan" message (the number of mappings), one
"field" message per mapping as soon as it is applied, and a final
"complete" message carrying the outcome and the filled markup. A fill
without a snapshot pastes the current clipboard.

Errors never close the connection; they arrive as "error" messages.
*/
package ws
