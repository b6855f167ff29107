package types

import "fmt"

// Category groups providers.
type Category string

const (
	CategoryClipboard Category = "clipboard"
	CategoryScraper   Category = "scraper"
	CategoryMatcher   Category = "matcher"
)

// Service describes a provider and the tools it exposes.
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool is one callable operation of a service.
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter describes a tool argument.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context carries caller information into a tool call.
type Context struct {
	SourceURL string `json:"source_url,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Result is the envelope every tool call returns.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}

// Done wraps tool output in a successful result.
func Done(data map[string]interface{}) (*Result, error) {
	return &Result{Success: true, Data: data}, nil
}

// Fail reports a tool-level failure. The Go error stays nil: a failed
// tool call is still a well-formed response.
func Fail(msg string) (*Result, error) {
	return &Result{Error: &msg}, nil
}

// Failf is Fail with formatting.
func Failf(format string, args ...interface{}) (*Result, error) {
	return Fail(fmt.Sprintf(format, args...))
}

// StringArg returns params[key] when it is a non-empty string.
func StringArg(params map[string]interface{}, key string) (string, bool) {
	s, ok := params[key].(string)
	return s, ok && s != ""
}
