package ingest

import (
	"errors"
	"fmt"
)

// ErrDuplicateEvent is returned by EventStore.Capture when an insert loses
// the first-capture race on external_event_ref. The coordinator recovers it
// locally; it must never reach the webhook caller.
var ErrDuplicateEvent = errors.New("event already captured for this external ref")

// ValidationError means the inbound payload is malformed or its inner event
// is not on the supported allow-list. Not retryable at this layer; the
// webhook boundary maps it to a 4xx.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid inbound event: %s %s", e.Field, e.Reason)
}

// TenantResolutionError means the external team ref does not map to any
// tenant we manage. Not retryable; the webhook boundary maps it to a 4xx.
type TenantResolutionError struct {
	TeamRef string
}

func (e *TenantResolutionError) Error() string {
	return fmt.Sprintf("no tenant for external team ref %q", e.TeamRef)
}

// StorageError wraps any persistence failure other than the duplicate-key
// race. Fatal to the dispatch attempt; the upstream webhook sender retries.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// EnqueueError wraps a task-queue publish failure. Fatal to this call but
// safe: the event stays captured-unacknowledged and is re-dispatched on the
// next webhook redelivery.
type EnqueueError struct {
	Subject string
	Err     error
}

func (e *EnqueueError) Error() string { return fmt.Sprintf("enqueue %s: %v", e.Subject, e.Err) }
func (e *EnqueueError) Unwrap() error { return e.Err }
