package harness

// Outcome is what one query produced.
type Outcome struct {
	Address string `json:"address"`

	// Type is the shape the query resolved, in type reference notation.
	Type string `json:"type"`

	// Value is the resolved value in canonical JSON. Empty on error.
	Value string `json:"value,omitempty"`

	// Error is the error code ("" on success, "ERROR" for uncoded errors).
	Error string `json:"error,omitempty"`

	// Message is the full error text.
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Outcomes has one entry per query, in query order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains one message per failed expectation.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
