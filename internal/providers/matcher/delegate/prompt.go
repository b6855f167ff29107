package delegate

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

const systemInstruction = "You map form fields for automatic form filling. Always respond with valid JSON only."

// BuildPrompt renders the mapping instructions for an LLM.
func BuildPrompt(req Request) (string, error) {
	src, err := sonic.ConfigStd.MarshalIndent(req.SourceFields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode source fields: %w", err)
	}
	tgt, err := sonic.ConfigStd.MarshalIndent(req.TargetFields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode target fields: %w", err)
	}

	var b strings.Builder
	b.WriteString("Map source fields to target fields based on semantic meaning.\n\n")
	b.WriteString("Source fields (from clipboard):\n")
	b.Write(src)
	b.WriteString("\n\nTarget fields (on current page):\n")
	b.Write(tgt)
	b.WriteString(`

Rules:
- Match by semantic meaning, not exact labels
- "First Name" = "Given Name" = "fname" = "first_name"
- "DOB" = "Date of Birth" = "birthdate" = "dob"
- "Phone" = "Phone Number" = "telephone" = "mobile"
- Each target field appears in at most one mapping
- transformation is one of: none, date, phone, split, combine, address
- Only include mappings with confidence above 0.6

Return ONLY valid JSON:
{
  "mappings": [
    {"sourceFieldId": "src_0", "targetFieldId": "tgt_0", "transformation": "none", "confidence": 0.95}
  ]
}`)
	return b.String(), nil
}

// ParseResponse decodes a delegate answer, tolerating a markdown code fence
// around the JSON.
func ParseResponse(text string) (*Response, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	var resp Response
	if err := sonic.UnmarshalString(text, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}
