package mq

import (
	"context"

	"github.com/google/uuid"
)

// Noop discards published messages. Subscribe blocks until ctx is done.
type Noop struct{}

func (Noop) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return uuid.NewString(), nil
}

func (Noop) Subscribe(ctx context.Context, channel string, handler Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (Noop) Close() error { return nil }
