// Package delegate talks to the optional semantic mapping service. A
// delegate receives short summaries of source and target fields and
// proposes source to target pairs with a confidence. Two clients are
// provided: a plain JSON-over-HTTP client for self-hosted services and a
// Gemini client.
package delegate
