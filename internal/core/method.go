package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidMethod is returned when text is not a known HTTP verb.
var ErrInvalidMethod = errors.New("invalid HTTP method")

// Methods is the vocabulary accepted for a record's method.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodPatch,
	http.MethodTrace,
}

// ParseMethod validates text against Methods. Matching ignores case and
// surrounding whitespace; the canonical upper-case verb is returned.
func ParseMethod(text string) (string, error) {
	candidate := strings.ToUpper(strings.TrimSpace(text))
	for _, m := range Methods {
		if m == candidate {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, text)
}
