package history

import (
	"time"
)

// Entry is a single completed run of a stored request.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	RequestName   string `json:"request_name"`
	RequestMethod string `json:"request_method"`
	RequestURL    string `json:"request_url"`
	RequestBody   string `json:"request_body,omitempty"`

	// ResponseStatus holds the numeric status text, or the error marker when
	// the run failed before a response arrived.
	ResponseStatus string `json:"response_status"`
	ResponseBody   string `json:"response_body,omitempty"`
	ResponseTime   int64  `json:"response_time"` // milliseconds
	Failed         bool   `json:"failed"`
}

// QueryOptions specifies filters and pagination for history queries.
type QueryOptions struct {
	RequestName string // Filter by request name (exact)
	Failed      *bool  // Filter by failure flag when set

	Limit  int // Maximum number of results (0 = no limit)
	Offset int // Number of results to skip
}

// Validate rejects negative pagination values.
func (o QueryOptions) Validate() error {
	if o.Limit < 0 || o.Offset < 0 {
		return ErrInvalidOption
	}
	return nil
}
