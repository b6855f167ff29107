// Package types defines the records that move between the scanner, the
// matcher and the fill executor.
//
// Core Types:
//   - Field: one scanned form control plus its metadata
//   - Entity: a named group of fields ("Customer Information")
//   - ClipboardSnapshot: everything captured from one page
//   - FieldMapping: one proposed source to target correspondence
//   - FillOutcome: per-field results of a fill
//
// Provider Types:
//   - Service, Tool, Parameter: tool definitions exposed by providers
//   - Result: the envelope every tool call returns
//
// All records are plain structs with JSON tags so a snapshot can be stored,
// edited by a user and handed back for a later fill.
package types
