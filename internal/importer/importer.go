// Package importer turns commands copied from other tools into records.
package importer

import "errors"

// Common errors
var (
	ErrNotCurl    = errors.New("not a curl command")
	ErrMissingURL = errors.New("no URL found in curl command")
	ErrParseError = errors.New("parse error")
)
