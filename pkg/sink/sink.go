// Package sink forwards dashboard snapshots to external systems.
package sink

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sink receives JSON encoded readings under a key such as "dashboard" or
// "senec".
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Multi fans out to several sinks. A failing sink does not stop the others.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, key string, payload []byte) error {
	var firstErr error
	for _, s := range m {
		if err := s.Publish(ctx, key, payload); err != nil {
			logrus.WithField("key", key).Warnf("failed to publish: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m Multi) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublishJSON marshals v and publishes it to s.
func PublishJSON(ctx context.Context, s Sink, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to marshal %s", key)
	}
	return s.Publish(ctx, key, b)
}
