// Package outcome normalizes heterogeneous dispatch results into
// success/failure verdicts.
//
// Client-under-test payloads are not trusted to share a shape: the status
// field may be an integer or a numeric string, and the exception field may
// be a structured object, a JSON-encoded string, or missing entirely. All
// coercion happens here, once, instead of ad hoc at call sites.
package outcome

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// Sentinel errors attached to a Raw that never produced a payload.
var (
	// ErrDeadlineExceeded marks a request cancelled (or discarded) because
	// the batch's aggregate deadline fired.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrNotIssued marks a request that was never dispatched before the
	// aggregate deadline expired.
	ErrNotIssued = errors.New("not completed before deadline")
)

// Raw is the unstructured result of one dispatched request. Exactly one of
// Payload or Err is meaningful: a non-nil Payload carries the
// client-under-test's JSON document, a nil Payload means the dispatch
// failed hard before producing one.
type Raw struct {
	Payload []byte
	Err     error
	Latency time.Duration
}

// Result is the classified verdict for one request spec.
type Result struct {
	Tag     string `json:"tag"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Classify derives the verdict for one Raw. Deterministic and pure:
// classifying the same Raw twice yields the same Result.
func Classify(tag string, raw Raw) Result {
	if raw.Payload == nil {
		reason := "no payload"
		if raw.Err != nil {
			reason = raw.Err.Error()
		}
		return Result{Tag: tag, Success: false, Reason: reason}
	}

	status := extractStatus(raw.Payload)
	excType := extractExceptionType(raw.Payload)

	if status == 200 && excType == "" {
		return Result{Tag: tag, Success: true}
	}

	reason := fmt.Sprintf("status %d", status)
	if excType != "" {
		reason = fmt.Sprintf("status %d, exception %s", status, excType)
	}
	return Result{Tag: tag, Success: false, Reason: reason}
}

// extractStatus coerces the http_status field to an integer. A textual
// value parses only if it is all-numeric; anything else is treated as 0.
func extractStatus(payload []byte) int {
	field := gjson.GetBytes(payload, "http_status")
	switch field.Type {
	case gjson.Number:
		return int(field.Int())
	case gjson.String:
		if !allDigits(field.Str) {
			return 0
		}
		n, err := strconv.Atoi(field.Str)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// extractExceptionType returns the exception type name, or "" when the
// exception field is absent, empty, or unparseable. The field arrives
// either as a structured object or as a JSON-encoded string.
func extractExceptionType(payload []byte) string {
	field := gjson.GetBytes(payload, "exception")
	switch {
	case field.IsObject():
		return field.Get("type").String()
	case field.Type == gjson.String:
		if field.Str == "" || !gjson.Valid(field.Str) {
			return ""
		}
		parsed := gjson.Parse(field.Str)
		if !parsed.IsObject() {
			return ""
		}
		return parsed.Get("type").String()
	default:
		return ""
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
