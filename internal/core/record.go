package core

import (
	"fmt"
	"net/http"
)

// StatusError is stored as the last status of a record whose run failed.
const StatusError = "Error"

// Record is a stored HTTP request definition together with the result of
// its most recent run.
type Record struct {
	Name         string `json:"name" yaml:"name"`
	Method       string `json:"method" yaml:"method"`
	URL          string `json:"url" yaml:"url"`
	Body         string `json:"body" yaml:"body"`
	LastStatus   string `json:"last_status" yaml:"last_status"`
	LastResponse string `json:"last_response" yaml:"last_response"`

	// StorageID is assigned by the record store on the first successful
	// save and never changes afterwards.
	StorageID string `json:"-" yaml:"-"`
}

// NewRecord creates a blank record with the given name and the default
// method.
func NewRecord(name string) *Record {
	return &Record{
		Name:   name,
		Method: http.MethodGet,
	}
}

// DefaultName returns the generated name for the n-th request.
func DefaultName(n int) string {
	return fmt.Sprintf("Request #%d", n)
}

// Persisted reports whether the record has been saved at least once.
func (r *Record) Persisted() bool {
	return r.StorageID != ""
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	return &clone
}

// SetResult stores the outcome of a run.
func (r *Record) SetResult(res Result) {
	r.LastStatus = res.Status
	r.LastResponse = res.Body
}

// SetFailure stores a failed run.
func (r *Record) SetFailure(err error) {
	r.LastStatus = StatusError
	r.LastResponse = err.Error()
}

// Value returns the stored text behind an editable field.
func (r *Record) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldMethod:
		return r.Method
	case FieldURL:
		return r.URL
	case FieldBody:
		return r.Body
	default:
		return ""
	}
}

// Apply writes text into the attribute behind the field. The method is only
// changed when the text parses as a known verb; ErrInvalidMethod is returned
// otherwise and the record is left untouched.
func (r *Record) Apply(f Field, text string) error {
	switch f {
	case FieldName:
		r.Name = text
	case FieldMethod:
		method, err := ParseMethod(text)
		if err != nil {
			return err
		}
		r.Method = method
	case FieldURL:
		r.URL = text
	case FieldBody:
		r.Body = text
	default:
		return fmt.Errorf("unknown field: %d", f)
	}
	return nil
}

// Result is the outcome of a successful run.
type Result struct {
	Status string
	Body   string
}
