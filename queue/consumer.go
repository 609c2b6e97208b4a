package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"otis/ingest"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Handler processes one dispatch envelope. A nil return acks the message; an
// error naks it for redelivery.
type Handler func(ctx context.Context, env *ingest.Envelope) error

// Consumer feeds dispatch envelopes from the stream to a Handler through a
// durable JetStream consumer.
type Consumer struct {
	js      jetstream.JetStream
	stream  string
	durable string
}

func NewConsumer(nc *nats.Conn, stream, durable string) (*Consumer, error) {
	if stream == "" {
		stream = DefaultStream
	}
	if durable == "" {
		durable = "otis-issue-worker"
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Consumer{js: js, stream: stream, durable: durable}, nil
}

// Consume subscribes and handles envelopes until ctx is canceled. Envelopes
// that cannot even be decoded are terminated instead of naked, otherwise they
// would redeliver forever.
func (c *Consumer) Consume(ctx context.Context, handle Handler) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     c.stream,
		Subjects: []string{c.stream + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", c.stream, err)
	}

	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.stream, jetstream.ConsumerConfig{
		Durable:       c.durable,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: c.stream + ".>",
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", c.durable, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		var env ingest.Envelope
		if err := json.Unmarshal(msg.Data(), &env); err != nil {
			log.Printf("[queue] dropping undecodable envelope on %s: %v", msg.Subject(), err)
			_ = msg.Term()
			return
		}

		if err := handle(ctx, &env); err != nil {
			log.Printf("[queue] handler failed dispatch=%s event=%d: %v", env.DispatchID, env.Event.ID, err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	log.Printf("[queue] consumer subscribed, stream=%s durable=%s", c.stream, c.durable)

	go func() {
		<-ctx.Done()
		cc.Stop()
	}()

	return nil
}
