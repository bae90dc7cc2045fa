package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidProductID is returned before any request is made.
	ErrInvalidProductID = errors.New("invalid product id")

	// ErrNoResponse means the catalog could not be reached or nothing came back.
	ErrNoResponse = errors.New("no response received from catalog")

	// ErrNotFound matches a StatusError with status 404.
	ErrNotFound = errors.New("product not found")
)

// StatusError is a response from the catalog with an unexpected status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s: %d - %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ValidationError describes a catalog record that could not be turned into
// a product.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("product %s: %s", e.Field, e.Reason)
}
