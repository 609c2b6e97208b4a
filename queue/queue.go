// Package queue implements the task-queue collaborator on NATS JetStream.
// Dispatch envelopes are published to "<stream>.<inner-event-type>" subjects
// and consumed by a durable consumer with explicit acks, so an envelope is
// redelivered until the worker finishes handling it.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"otis/ingest"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const DefaultStream = "OTIS_EVENTS"

// Connect opens the NATS connection used by both publisher and consumer.
func Connect(url string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	return nats.Connect(url, nats.Name("otis"))
}

// Publisher implements ingest.Queue on a JetStream stream.
type Publisher struct {
	js     jetstream.JetStream
	stream string
}

// NewPublisher creates the publisher and ensures the stream exists with
// file storage, so captured dispatches survive a broker restart.
func NewPublisher(nc *nats.Conn, stream string) (*Publisher, error) {
	if stream == "" {
		stream = DefaultStream
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(context.Background(), jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{stream + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", stream, err)
	}

	return &Publisher{js: js, stream: stream}, nil
}

func (p *Publisher) Enqueue(ctx context.Context, subject string, env *ingest.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	if _, err := p.js.Publish(ctx, p.stream+"."+subject, data); err != nil {
		return fmt.Errorf("publish to %s.%s: %w", p.stream, subject, err)
	}
	return nil
}
