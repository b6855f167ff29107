// Package transform converts values between the formats of two forms.
//
// Every function is total: input that cannot be parsed comes back
// unchanged, never as an error. Apply dispatches a mapping's
// transformation kind to the matching function.
package transform
