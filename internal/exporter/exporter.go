// Package exporter renders stored records as shell commands that reproduce
// them outside the client.
package exporter

import "errors"

// ErrInvalidRecord is returned when there is nothing to export.
var ErrInvalidRecord = errors.New("invalid record")
