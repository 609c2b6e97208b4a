package ingest

import (
	"encoding/json"

	"otis/models"
)

/************************************************
/**** MARK: CALLBACK KINDS ****/
/************************************************/
const CALLBACK_URL_VERIFICATION = "url_verification"
const CALLBACK_EVENT = "event_callback"

// InboundEvent is the parsed form of one webhook callback. It is ephemeral:
// only the normalized models.Event derived from it is persisted.
type InboundEvent struct {
	Token        string     `json:"token"`
	CallbackKind string     `json:"type"`
	TeamRef      string     `json:"team_id"`
	ExternalRef  string     `json:"event_id"`
	DispatchedAt int64      `json:"event_time"`
	Challenge    string     `json:"challenge"`
	Inner        InnerEvent `json:"event"`

	// Raw keeps the original payload verbatim for storage and replay.
	Raw []byte `json:"-"`
}

// InnerEvent carries the discriminator fields of the wrapped event plus the
// handful of fields downstream handlers care about. Unknown fields are
// preserved through Raw, not here.
type InnerEvent struct {
	Type        string `json:"type"`
	ChannelType string `json:"channel_type"`
	Channel     string `json:"channel"`
	User        string `json:"user"`
	Text        string `json:"text"`
	TS          string `json:"ts"`
	BotID       string `json:"bot_id"`
	Reaction    string `json:"reaction"`
	Item        struct {
		Channel string `json:"channel"`
		TS      string `json:"ts"`
	} `json:"item"`
}

// ParseInbound decodes a raw webhook body. It fails only on broken JSON;
// missing required fields are reported by Normalize so the caller can answer
// url_verification callbacks that carry no event at all.
func ParseInbound(raw []byte) (*InboundEvent, error) {
	var in InboundEvent
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, &ValidationError{Field: "payload", Reason: "is not valid json"}
	}
	in.Raw = raw
	return &in, nil
}

// Classify maps the inner event's discriminator fields onto the closed set of
// supported classifications. The second return is false for anything off the
// allow-list.
func Classify(inner InnerEvent) (string, bool) {
	switch inner.Type {
	case "message":
		switch inner.ChannelType {
		case "channel":
			return models.EVENT_TYPE_MESSAGE_IN_CHANNEL, true
		case "group":
			return models.EVENT_TYPE_MESSAGE_IN_GROUP, true
		}
	case "reaction_added":
		return models.EVENT_TYPE_REACTION_ADDED, true
	case "app_mention":
		return models.EVENT_TYPE_APP_MENTION, true
	}
	return "", false
}

// Normalize turns a parsed callback into an unsaved dedup record (ID zero
// until captured). Pure transformation, no side effects.
func Normalize(tenantID int64, in *InboundEvent) (*models.Event, error) {
	ref := models.NormalizeRef(in.ExternalRef)
	if ref == "" {
		return nil, &ValidationError{Field: "event_id", Reason: "is required"}
	}
	if in.DispatchedAt <= 0 {
		return nil, &ValidationError{Field: "event_time", Reason: "is required"}
	}

	innerType, ok := Classify(in.Inner)
	if !ok {
		return nil, &ValidationError{Field: "event.type", Reason: "is not a supported event"}
	}

	return &models.Event{
		TenantID:       tenantID,
		ExternalRef:    ref,
		InnerEventType: innerType,
		DispatchedAt:   in.DispatchedAt,
		RawPayload:     string(in.Raw),
	}, nil
}
