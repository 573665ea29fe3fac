// Package reqspec builds ordered batches of immutable request descriptions.
package reqspec

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidCount is returned when a batch is requested with a non-positive size.
var ErrInvalidCount = errors.New("batch count must be positive")

// Spec describes a single request to dispatch. Immutable once built.
type Spec struct {
	URL     string
	Method  string
	Timeout time.Duration
	Tag     string
}

// Build produces count Specs with deterministic tags of the form
// "{label}-{index}", index starting at 0. Specs come back in tag order and
// the executor preserves that order in its results.
func Build(label string, count int, url, method string, timeout time.Duration) ([]Spec, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if label == "" {
		label = "req"
	}

	specs := make([]Spec, count)
	for i := range specs {
		specs[i] = Spec{
			URL:     url,
			Method:  method,
			Timeout: timeout,
			Tag:     fmt.Sprintf("%s-%d", label, i),
		}
	}
	return specs, nil
}
