// Command formclip copies form data from one page and fills it into
// another.
//
// Usage:
//
//	# list the fields of a saved page, or of a live one
//	formclip scan quote.html
//	formclip scan --url https://crm.example.com/quote/7 --render
//
//	# capture a page into a snapshot file
//	formclip copy quote.html -o snapshot.json
//
//	# fill a page from a snapshot
//	formclip fill application.html --snapshot snapshot.json -o filled.html
//
//	# run the HTTP API
//	formclip serve --port 8000
//
// Configuration comes from the environment (see internal/infrastructure/config),
// optionally loaded from a .env file in the working directory. With
// CLIPBOARD_DIR set, copy also writes the clipboard there and fill without
// --snapshot pastes it.
package main
