package ingest

import (
	"context"
	"errors"
	"time"

	"otis/models"

	"github.com/google/uuid"
)

// Coordinator drives the capture + dispatch state machine for one inbound
// event. Per external ref the states are: unseen -> captured (unacked) ->
// acknowledged (terminal). Dispatch is safe to call concurrently for the same
// ref; the store's uniqueness constraint is the linearization point.
type Coordinator struct {
	tenants TenantStore
	events  EventStore
	queue   Queue
}

func NewCoordinator(tenants TenantStore, events EventStore, queue Queue) *Coordinator {
	return &Coordinator{tenants: tenants, events: events, queue: queue}
}

// Dispatch captures the inbound event exactly once and hands it to the task
// queue. Already-acknowledged refs are returned without enqueueing; captured
// but unacknowledged refs are re-enqueued with a fresh dispatch id (a prior
// enqueue may have been lost, or the worker died before acknowledging).
//
// override forces re-normalization of the payload against the existing row
// and re-enqueues even an acknowledged event. It is only meant for explicit
// reprocessing, never for the regular webhook path.
func (co *Coordinator) Dispatch(ctx context.Context, in *InboundEvent, override bool) (*models.Event, error) {
	tenant, err := co.tenants.FindByExternalTeamRef(in.TeamRef)
	if err != nil {
		return nil, &StorageError{Op: "find tenant", Err: err}
	}
	if tenant == nil {
		return nil, &TenantResolutionError{TeamRef: in.TeamRef}
	}

	ref := models.NormalizeRef(in.ExternalRef)
	if ref == "" {
		return nil, &ValidationError{Field: "event_id", Reason: "is required"}
	}

	existing, err := co.events.FindByExternalRef(ref)
	if err != nil {
		return nil, &StorageError{Op: "find event", Err: err}
	}

	if existing != nil {
		if existing.Acknowledged && !override {
			// Terminal state. Repeated webhook deliveries of a fully
			// processed event are a no-op.
			return existing, nil
		}
		if override {
			fresh, err := Normalize(tenant.ID, in)
			if err != nil {
				return nil, err
			}
			existing.InnerEventType = fresh.InnerEventType
			existing.DispatchedAt = fresh.DispatchedAt
			existing.RawPayload = fresh.RawPayload
			if err := co.events.Capture(existing); err != nil {
				return nil, &StorageError{Op: "update event", Err: err}
			}
		}
		if err := co.enqueue(ctx, tenant, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	ev, err := Normalize(tenant.ID, in)
	if err != nil {
		return nil, err
	}

	if err := co.events.Capture(ev); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return co.recoverLostRace(ctx, tenant, ref)
		}
		return nil, &StorageError{Op: "insert event", Err: err}
	}

	if err := co.enqueue(ctx, tenant, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// recoverLostRace handles a concurrent first capture: some other call inserted
// the row between our lookup and our insert. Re-read and treat it as the
// captured-unacked branch instead of surfacing the integrity failure.
func (co *Coordinator) recoverLostRace(ctx context.Context, tenant *models.Tenant, ref string) (*models.Event, error) {
	ev, err := co.events.FindByExternalRef(ref)
	if err != nil {
		return nil, &StorageError{Op: "reread event", Err: err}
	}
	if ev == nil {
		return nil, &StorageError{Op: "reread event", Err: errors.New("row missing after duplicate-key insert")}
	}
	if ev.Acknowledged {
		return ev, nil
	}
	if err := co.enqueue(ctx, tenant, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (co *Coordinator) enqueue(ctx context.Context, tenant *models.Tenant, ev *models.Event) error {
	env := &Envelope{
		DispatchID:   uuid.New().String(),
		DispatchedAt: time.Now().UTC(),
		Tenant: TenantRef{
			ID:              tenant.ID,
			Name:            tenant.Name,
			ExternalTeamRef: tenant.ExternalTeamRef,
		},
		Event: *ev,
	}
	if err := co.queue.Enqueue(ctx, ev.InnerEventType, env); err != nil {
		return &EnqueueError{Subject: ev.InnerEventType, Err: err}
	}
	return nil
}
