package workers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	dbpkg "otis/db"
	"otis/ingest"
	"otis/models"
	"otis/queue"
	"otis/tools"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// resolveReaction is the reaction that closes an open issue.
const resolveReaction = "white_check_mark"

// IssueWorker consumes dispatch envelopes and turns qualifying events into
// support issues, posting formatted replies back to the source channel. It
// acknowledges the captured event only after its handler finished, so a crash
// mid-handling leaves the event eligible for re-dispatch.
type IssueWorker struct {
	db     *gorm.DB
	events ingest.EventStore

	// SlackBaseURL overrides the Slack API endpoint in tests.
	SlackBaseURL string
}

func NewIssueWorker(gdb *gorm.DB) *IssueWorker {
	return &IssueWorker{db: gdb, events: dbpkg.NewEventStore(gdb)}
}

// StartIssueWorker subscribes the worker to the dispatch stream.
func StartIssueWorker(ctx context.Context, gdb *gorm.DB, consumer *queue.Consumer) error {
	return consumer.Consume(ctx, NewIssueWorker(gdb).Handle)
}

// Handle processes one envelope. Safe under redelivery: the captured row is
// re-read and already-acknowledged events are skipped.
func (w *IssueWorker) Handle(ctx context.Context, env *ingest.Envelope) error {
	stored, err := w.events.FindByExternalRef(env.Event.ExternalRef)
	if err != nil {
		return fmt.Errorf("reload event: %w", err)
	}
	if stored == nil {
		log.Printf("issue worker: dispatch=%s references unknown event ref %q, dropping", env.DispatchID, env.Event.ExternalRef)
		return nil
	}
	if stored.Acknowledged {
		return nil
	}

	in, err := ingest.ParseInbound([]byte(stored.RawPayload))
	if err != nil {
		// The payload passed validation at capture time; failing to parse it
		// now is permanent, so acknowledge instead of redelivering forever.
		log.Printf("issue worker: event=%d has unparseable payload: %v", stored.ID, err)
		_, ackErr := w.events.MarkAcknowledged(stored.ID)
		return ackErr
	}

	switch stored.InnerEventType {
	case models.EVENT_TYPE_MESSAGE_IN_CHANNEL, models.EVENT_TYPE_MESSAGE_IN_GROUP, models.EVENT_TYPE_APP_MENTION:
		if err := w.openIssue(ctx, stored, in); err != nil {
			return err
		}
	case models.EVENT_TYPE_REACTION_ADDED:
		if err := w.resolveIssue(ctx, stored, in); err != nil {
			return err
		}
	default:
		log.Printf("issue worker: no handler for %s, acknowledging", stored.InnerEventType)
	}

	if _, err := w.events.MarkAcknowledged(stored.ID); err != nil {
		return fmt.Errorf("mark acknowledged: %w", err)
	}
	return nil
}

func (w *IssueWorker) openIssue(ctx context.Context, ev *models.Event, in *ingest.InboundEvent) error {
	// One issue per captured event, no matter how often the envelope is
	// redelivered.
	var existing models.Issue
	err := w.db.Where("event_id = ?", ev.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return err
	}

	summary := tools.Truncate(strings.TrimSpace(in.Inner.Text), 300)
	if summary == "" {
		summary = "(no message text)"
	}

	issue := models.Issue{
		Key:         issueKey(),
		TenantID:    ev.TenantID,
		EventID:     ev.ID,
		ChannelRef:  in.Inner.Channel,
		ReporterRef: in.Inner.User,
		Summary:     summary,
		MessageTS:   in.Inner.TS,
		Status:      models.ISSUE_STATUS_OPEN,
	}
	if err := w.db.Create(&issue).Error; err != nil {
		return err
	}

	w.postReply(ctx, ev.TenantID, issue.ChannelRef, func() (string, []tools.Block) {
		return tools.IssueOpenedBlocks(issue.Key, issue.Summary, issue.ReporterRef)
	})
	return nil
}

func (w *IssueWorker) resolveIssue(ctx context.Context, ev *models.Event, in *ingest.InboundEvent) error {
	if in.Inner.Reaction != resolveReaction {
		return nil
	}

	var issue models.Issue
	err := w.db.Where("tenant_id = ? AND message_ts = ? AND status = ?",
		ev.TenantID, in.Inner.Item.TS, models.ISSUE_STATUS_OPEN).First(&issue).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now()
	err = w.db.Model(&models.Issue{}).Where("id = ?", issue.ID).Updates(map[string]any{
		"status":      models.ISSUE_STATUS_RESOLVED,
		"resolved_at": &now,
	}).Error
	if err != nil {
		return err
	}

	w.postReply(ctx, ev.TenantID, in.Inner.Item.Channel, func() (string, []tools.Block) {
		return tools.IssueResolvedBlocks(issue.Key)
	})
	return nil
}

// postReply is best-effort: a failed chat reply is logged, not retried, so it
// never blocks acknowledgment of the captured event.
func (w *IssueWorker) postReply(ctx context.Context, tenantID int64, channel string, format func() (string, []tools.Block)) {
	var cfg models.SlackConfig
	if err := w.db.Where("tenant_id = ?", tenantID).First(&cfg).Error; err != nil {
		log.Printf("issue worker: no slack config for tenant %d, skipping reply", tenantID)
		return
	}

	if channel == "" {
		channel = cfg.DefaultChannel
	}
	if channel == "" {
		return
	}

	client := tools.SlackClient{BotToken: cfg.BotToken, BaseURL: w.SlackBaseURL}
	text, blocks := format()
	if _, err := client.PostMessage(ctx, channel, text, blocks); err != nil {
		log.Printf("issue worker: post reply error (tenant %d): %v", tenantID, err)
	}
}

func issueKey() string {
	return "OT-" + strings.ToUpper(uuid.New().String()[:8])
}
