package types

// FieldResult reports what happened to one mapping during a fill.
type FieldResult struct {
	Field   string `json:"field"`
	Locator string `json:"locator,omitempty"`
	OK      bool   `json:"success"`
	Value   string `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FillOutcome summarizes a fill.
type FillOutcome struct {
	Success      bool          `json:"success"`
	TotalFields  int           `json:"totalFields"`
	FilledFields int           `json:"filledFields"`
	Results      []FieldResult `json:"results"`
	Failed       []FieldResult `json:"failedFields"`
	Errors       []string      `json:"errors"`
}

// Record appends r and keeps the counters consistent.
func (o *FillOutcome) Record(r FieldResult) {
	o.Results = append(o.Results, r)
	if r.OK {
		o.FilledFields++
	} else {
		o.Failed = append(o.Failed, r)
		o.Errors = append(o.Errors, r.Error)
	}
	o.Success = len(o.Failed) == 0
}
