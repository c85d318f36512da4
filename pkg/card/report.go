package card

import "github.com/thehalleyyoung/cardplay-sub002/pkg/errors"

// Issue is a single validation problem, with the composition elements it
// concerns (node or entry IDs).
type Issue struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	IDs     []string    `json:"ids,omitempty"`
}

// Report collects validation problems so all of them can be shown at once.
// Validators never fail fast: errors and warnings accumulate and Valid
// reflects only the errors.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// NewReport returns an empty, valid report.
func NewReport() Report {
	return Report{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}
}

// AddError appends an error issue and marks the report invalid.
func (r *Report) AddError(code errors.Code, msg string, ids ...string) {
	r.Errors = append(r.Errors, Issue{Code: code, Message: msg, IDs: ids})
	r.Valid = false
}

// AddWarning appends a warning issue. Warnings do not affect validity.
func (r *Report) AddWarning(code errors.Code, msg string, ids ...string) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Message: msg, IDs: ids})
}

// HasCode reports whether any error in the report carries the given code.
func (r *Report) HasCode(code errors.Code) bool {
	for _, i := range r.Errors {
		if i.Code == code {
			return true
		}
	}
	return false
}
