package ingest

import (
	"errors"
	"fmt"
	"testing"

	"otis/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagePayload(eventID string, eventTime int64) []byte {
	return []byte(fmt.Sprintf(`{
		"token": "verify-me",
		"type": "event_callback",
		"team_id": "T03NX4VMCRH",
		"event_id": %q,
		"event_time": %d,
		"event": {
			"type": "message",
			"channel_type": "channel",
			"channel": "C05L3H90PL2",
			"user": "U0123",
			"text": "the export button is broken",
			"ts": "1691953744.000100"
		}
	}`, eventID, eventTime))
}

func TestParseInbound_BadJSON(t *testing.T) {
	_, err := ParseInbound([]byte("{not json"))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "payload", vErr.Field)
}

func TestParseInbound_Fields(t *testing.T) {
	in, err := ParseInbound(messagePayload("Ev05MLBBDPFC", 1691953744))
	require.NoError(t, err)

	assert.Equal(t, CALLBACK_EVENT, in.CallbackKind)
	assert.Equal(t, "T03NX4VMCRH", in.TeamRef)
	assert.Equal(t, "Ev05MLBBDPFC", in.ExternalRef)
	assert.Equal(t, int64(1691953744), in.DispatchedAt)
	assert.Equal(t, "message", in.Inner.Type)
	assert.Equal(t, "C05L3H90PL2", in.Inner.Channel)
	assert.NotEmpty(t, in.Raw)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		inner InnerEvent
		want  string
		ok    bool
	}{
		{"channel message", InnerEvent{Type: "message", ChannelType: "channel"}, models.EVENT_TYPE_MESSAGE_IN_CHANNEL, true},
		{"group message", InnerEvent{Type: "message", ChannelType: "group"}, models.EVENT_TYPE_MESSAGE_IN_GROUP, true},
		{"dm message", InnerEvent{Type: "message", ChannelType: "im"}, "", false},
		{"reaction", InnerEvent{Type: "reaction_added"}, models.EVENT_TYPE_REACTION_ADDED, true},
		{"mention", InnerEvent{Type: "app_mention"}, models.EVENT_TYPE_APP_MENTION, true},
		{"unsupported", InnerEvent{Type: "channel_archive"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.inner)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_OK(t *testing.T) {
	in, err := ParseInbound(messagePayload("  Ev05MLBBDPFC ", 1691953744))
	require.NoError(t, err)

	ev, err := Normalize(7, in)
	require.NoError(t, err)

	assert.Equal(t, int64(0), ev.ID, "must stay unsaved until captured")
	assert.Equal(t, int64(7), ev.TenantID)
	assert.Equal(t, "ev05mlbbdpfc", ev.ExternalRef, "ref must be trimmed and lower-cased")
	assert.Equal(t, models.EVENT_TYPE_MESSAGE_IN_CHANNEL, ev.InnerEventType)
	assert.Equal(t, int64(1691953744), ev.DispatchedAt)
	assert.Equal(t, string(in.Raw), ev.RawPayload)
	assert.False(t, ev.Acknowledged)
}

func TestNormalize_MissingRef(t *testing.T) {
	in, err := ParseInbound(messagePayload("", 1691953744))
	require.NoError(t, err)

	_, err = Normalize(7, in)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "event_id", vErr.Field)
}

func TestNormalize_MissingTimestamp(t *testing.T) {
	in, err := ParseInbound(messagePayload("Ev05MLBBDPFC", 0))
	require.NoError(t, err)

	_, err = Normalize(7, in)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "event_time", vErr.Field)
}

func TestNormalize_UnsupportedInnerEvent(t *testing.T) {
	in, err := ParseInbound([]byte(`{
		"type": "event_callback",
		"team_id": "T03NX4VMCRH",
		"event_id": "Ev05MLBBDPFC",
		"event_time": 1691953744,
		"event": {"type": "channel_archive", "channel": "C05L3H90PL2"}
	}`))
	require.NoError(t, err)

	_, err = Normalize(7, in)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "event.type", vErr.Field)
}
