package ingest

import (
	"context"
	"errors"
	"testing"

	"otis/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTenant = &models.Tenant{ID: 7, Name: "acme", ExternalTeamRef: "t03nx4vmcrh"}

func newTestCoordinator() (*Coordinator, *mockTenantStore, *mockEventStore, *mockQueue) {
	tenants := new(mockTenantStore)
	events := new(mockEventStore)
	q := new(mockQueue)
	return NewCoordinator(tenants, events, q), tenants, events, q
}

func parsedMessage(t *testing.T) *InboundEvent {
	t.Helper()
	in, err := ParseInbound(messagePayload("Ev05MLBBDPFC", 1691953744))
	require.NoError(t, err)
	return in
}

func TestDispatch_UnknownTenantFailsClosed(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	tenants.On("FindByExternalTeamRef", "T03NX4VMCRH").Return(nil, nil)

	_, err := co.Dispatch(context.Background(), parsedMessage(t), false)

	var tErr *TenantResolutionError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, "T03NX4VMCRH", tErr.TeamRef)
	events.AssertNotCalled(t, "Capture", mock.Anything)
	q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_MissingRefNeverReachesStorage(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	tenants.On("FindByExternalTeamRef", mock.Anything).Return(testTenant, nil)

	in := parsedMessage(t)
	in.ExternalRef = "   "

	_, err := co.Dispatch(context.Background(), in, false)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	events.AssertNotCalled(t, "FindByExternalRef", mock.Anything)
	events.AssertNotCalled(t, "Capture", mock.Anything)
	q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_FirstCapture(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	tenants.On("FindByExternalTeamRef", "T03NX4VMCRH").Return(testTenant, nil)
	events.On("FindByExternalRef", "ev05mlbbdpfc").Return(nil, nil)
	events.On("Capture", mock.AnythingOfType("*models.Event")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Event).ID = 42
	}).Return(nil)
	q.On("Enqueue", mock.Anything, models.EVENT_TYPE_MESSAGE_IN_CHANNEL, mock.Anything).Return(nil)

	ev, err := co.Dispatch(context.Background(), parsedMessage(t), false)
	require.NoError(t, err)

	assert.Equal(t, int64(42), ev.ID)
	assert.Equal(t, "ev05mlbbdpfc", ev.ExternalRef)
	require.Len(t, q.envelopes, 1)

	env := q.envelopes[0]
	assert.NotEmpty(t, env.DispatchID)
	assert.NotEqual(t, ev.ExternalRef, env.DispatchID)
	assert.Equal(t, testTenant.ID, env.Tenant.ID)
	assert.Equal(t, int64(42), env.Event.ID)
	events.AssertExpectations(t)
	q.AssertExpectations(t)
}

func TestDispatch_RepeatBeforeAckReenqueues(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	existing := &models.Event{ID: 42, TenantID: 7, ExternalRef: "ev05mlbbdpfc", InnerEventType: models.EVENT_TYPE_MESSAGE_IN_CHANNEL}

	tenants.On("FindByExternalTeamRef", mock.Anything).Return(testTenant, nil)
	events.On("FindByExternalRef", "ev05mlbbdpfc").Return(existing, nil)
	q.On("Enqueue", mock.Anything, models.EVENT_TYPE_MESSAGE_IN_CHANNEL, mock.Anything).Return(nil)

	first, err := co.Dispatch(context.Background(), parsedMessage(t), false)
	require.NoError(t, err)
	second, err := co.Dispatch(context.Background(), parsedMessage(t), false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	events.AssertNotCalled(t, "Capture", mock.Anything)

	require.Len(t, q.envelopes, 2)
	assert.NotEqual(t, q.envelopes[0].DispatchID, q.envelopes[1].DispatchID,
		"every enqueue attempt must carry a fresh correlation id")
}

func TestDispatch_AfterAckIsTerminal(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	acked := &models.Event{ID: 42, TenantID: 7, ExternalRef: "ev05mlbbdpfc", Acknowledged: true}

	tenants.On("FindByExternalTeamRef", mock.Anything).Return(testTenant, nil)
	events.On("FindByExternalRef", "ev05mlbbdpfc").Return(acked, nil)

	ev, err := co.Dispatch(context.Background(), parsedMessage(t), false)
	require.NoError(t, err)

	assert.Equal(t, int64(42), ev.ID)
	q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_LostInsertRaceRecovers(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	winner := &models.Event{ID: 42, TenantID: 7, ExternalRef: "ev05mlbbdpfc", InnerEventType: models.EVENT_TYPE_MESSAGE_IN_CHANNEL}

	tenants.On("FindByExternalTeamRef", mock.Anything).Return(testTenant, nil)
	// First lookup sees nothing; the insert then loses the race; the re-read
	// finds the winner's row.
	events.On("FindByExternalRef", "ev05mlbbdpfc").Return(nil, nil).Once()
	events.On("Capture", mock.Anything).Return(ErrDuplicateEvent).Once()
	events.On("FindByExternalRef", "ev05mlbbdpfc").Return(winner, nil).Once()
	q.On("Enqueue", mock.Anything, models.EVENT_TYPE_MESSAGE_IN_CHANNEL, mock.Anything).Return(nil).Once()

	ev, err := co.Dispatch(context.Background(), parsedMessage(t), false)
	require.NoError(t, err)

	assert.Equal(t, int64(42), ev.ID)
	events.AssertExpectations(t)
	q.AssertExpectations(t)
}

func TestDispatch_StorageFailurePropagates(t *testing.T) {
	co, tenants, events, _ := newTestCoordinator()
	tenants.On("FindByExternalTeamRef", mock.Anything).Return(testTenant, nil)
	events.On("FindByExternalRef", mock.Anything).Return(nil, nil)
	events.On("Capture", mock.Anything).Return(errors.New("connection reset"))

	_, err := co.Dispatch(context.Background(), parsedMessage(t), false)

	var sErr *StorageError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, "insert event", sErr.Op)
}

func TestDispatch_EnqueueFailureLeavesEventCaptured(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	tenants.On("FindByExternalTeamRef", mock.Anything).Return(testTenant, nil)
	events.On("FindByExternalRef", mock.Anything).Return(nil, nil)
	events.On("Capture", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Event).ID = 42
	}).Return(nil)
	q.On("Enqueue", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down"))

	_, err := co.Dispatch(context.Background(), parsedMessage(t), false)

	// No in-process retry: the row stays captured-unacked and the next
	// webhook redelivery re-drives dispatch.
	var qErr *EnqueueError
	require.True(t, errors.As(err, &qErr))
	events.AssertCalled(t, "Capture", mock.Anything)
}

func TestDispatch_OverrideReplaysAcknowledgedEvent(t *testing.T) {
	co, tenants, events, q := newTestCoordinator()
	acked := &models.Event{ID: 42, TenantID: 7, ExternalRef: "ev05mlbbdpfc", InnerEventType: models.EVENT_TYPE_MESSAGE_IN_CHANNEL, Acknowledged: true}

	tenants.On("FindByExternalTeamRef", mock.Anything).Return(testTenant, nil)
	events.On("FindByExternalRef", "ev05mlbbdpfc").Return(acked, nil)
	events.On("Capture", acked).Return(nil)
	q.On("Enqueue", mock.Anything, models.EVENT_TYPE_MESSAGE_IN_CHANNEL, mock.Anything).Return(nil)

	ev, err := co.Dispatch(context.Background(), parsedMessage(t), true)
	require.NoError(t, err)

	assert.Equal(t, int64(42), ev.ID)
	events.AssertCalled(t, "Capture", acked)
	require.Len(t, q.envelopes, 1)
}
