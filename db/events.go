package db

import (
	"strings"
	"time"

	"otis/ingest"
	"otis/models"

	"github.com/jinzhu/gorm"
)

// EventStore is the gorm-backed deduplication store (ingest.EventStore).
type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) FindByExternalRef(ref string) (*models.Event, error) {
	var ev models.Event
	err := s.db.Where("external_event_ref = ?", models.NormalizeRef(ref)).First(&ev).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Capture inserts the event when it has no ID yet, otherwise re-persists
// payload and classification against the existing row (override path). An
// insert losing the uniqueness race on external_event_ref comes back as
// ingest.ErrDuplicateEvent so callers can re-read instead of failing.
func (s *EventStore) Capture(ev *models.Event) error {
	ev.ExternalRef = models.NormalizeRef(ev.ExternalRef)

	if ev.ID == 0 {
		if err := s.db.Create(ev).Error; err != nil {
			if isUniqueViolation(err) {
				return ingest.ErrDuplicateEvent
			}
			return err
		}
		return nil
	}

	return s.db.Model(&models.Event{}).Where("id = ?", ev.ID).Updates(map[string]any{
		"inner_event_type": ev.InnerEventType,
		"dispatched_at":    ev.DispatchedAt,
		"raw_payload":      ev.RawPayload,
	}).Error
}

// MarkAcknowledged flips the one-way acknowledged flag. Idempotent: calling
// it again on an already-acknowledged event changes nothing and returns the
// row as-is.
func (s *EventStore) MarkAcknowledged(eventID int64) (*models.Event, error) {
	now := time.Now()
	err := s.db.Model(&models.Event{}).
		Where("id = ? AND acknowledged = ?", eventID, false).
		Updates(map[string]any{
			"acknowledged":    true,
			"acknowledged_at": &now,
		}).Error
	if err != nil {
		return nil, err
	}

	var ev models.Event
	if err := s.db.First(&ev, eventID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

// isUniqueViolation matches the duplicate-key errors of both supported
// dialects. gorm v1 surfaces the raw driver error, so string matching is the
// only portable check.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
