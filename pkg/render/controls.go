package render

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Toggle is an on/off control backed by a mutation. A failed mutation
// reverts the control to its state before the action.
type Toggle struct {
	ID string

	mu      sync.Mutex
	checked bool
	mutate  func(ctx context.Context, on bool) error
}

func NewToggle(id string, mutate func(ctx context.Context, on bool) error) *Toggle {
	return &Toggle{ID: id, mutate: mutate}
}

// Checked returns the current state.
func (t *Toggle) Checked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checked
}

// Sync sets the state from a poll without issuing a mutation.
func (t *Toggle) Sync(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checked = on
}

// Set flips the control to on and issues the mutation.
func (t *Toggle) Set(ctx context.Context, on bool) error {
	t.mu.Lock()
	prev := t.checked
	t.checked = on
	t.mu.Unlock()

	if err := t.mutate(ctx, on); err != nil {
		t.mu.Lock()
		t.checked = prev
		t.mu.Unlock()
		logrus.WithField("control", t.ID).Error(err)
		return err
	}
	return nil
}

// Select is a choice control backed by a mutation. The selection only
// changes when the mutation succeeds.
type Select struct {
	ID    string
	Label string

	mu     sync.Mutex
	value  string
	mutate func(ctx context.Context, value string) error
}

func NewSelect(id, label string, mutate func(ctx context.Context, value string) error) *Select {
	return &Select{ID: id, Label: label, mutate: mutate}
}

func (s *Select) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Select) Sync(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

// Choose issues the mutation and logs a success banner.
func (s *Select) Choose(ctx context.Context, value string) error {
	if err := s.mutate(ctx, value); err != nil {
		logrus.WithField("control", s.ID).Error(err)
		return err
	}
	s.Sync(value)
	logrus.Infof("Successfully set %s to %s", s.Label, value)
	return nil
}
