package ingest

import (
	"context"
	"time"

	"otis/models"
)

// EventStore is the deduplication store keyed by external_event_ref.
// Lookups return (nil, nil) when no row exists. Capture inserts when the
// event has no ID yet and updates payload/classification in place otherwise;
// an insert losing the uniqueness race must return ErrDuplicateEvent, never a
// raw driver error.
type EventStore interface {
	FindByExternalRef(ref string) (*models.Event, error)
	Capture(ev *models.Event) error
	MarkAcknowledged(eventID int64) (*models.Event, error)
}

// TenantStore resolves external team refs to tenants. Read-only;
// (nil, nil) when the ref is unknown.
type TenantStore interface {
	FindByExternalTeamRef(ref string) (*models.Tenant, error)
}

// Queue is the asynchronous task-queue collaborator. At-least-once delivery,
// no ordering guarantee.
type Queue interface {
	Enqueue(ctx context.Context, subject string, env *Envelope) error
}

// Envelope is what gets enqueued per dispatch attempt. DispatchID is a fresh
// tracing id per enqueue, distinct from the event's external ref.
type Envelope struct {
	DispatchID   string       `json:"dispatch_id"`
	DispatchedAt time.Time    `json:"dispatched_at"`
	Tenant       TenantRef    `json:"tenant"`
	Event        models.Event `json:"event"`
}

// TenantRef is the tenant's public identity carried alongside the event.
type TenantRef struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ExternalTeamRef string `json:"external_team_ref"`
}
