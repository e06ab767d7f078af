package checker

// Severity ranks a finding. Only errors fail a descriptor.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeveritySuggestion
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeveritySuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// Report collects the findings for one descriptor file.
type Report struct {
	Path        string   `json:"path"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

func (r *Report) add(sev Severity, msg string) {
	switch sev {
	case SeverityError:
		r.Errors = append(r.Errors, msg)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, msg)
	default:
		r.Suggestions = append(r.Suggestions, msg)
	}
}

// Passed reports whether the descriptor has no errors.
func (r *Report) Passed() bool {
	return len(r.Errors) == 0
}

// Verdict is the one-line outcome shown after the findings.
func (r *Report) Verdict(strict bool) string {
	switch {
	case !r.Passed():
		return "Validation failed"
	case len(r.Warnings) > 0 && strict:
		return "Validation passed (with warnings)"
	default:
		return "Validation passed!"
	}
}
