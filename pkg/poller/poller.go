// Package poller fetches a panel document on an interval and renders it
// into a target.
package poller

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solarwallbox/solarwallbox/pkg/render"
)

// FetchFunc returns the decoded JSON document of a panel.
type FetchFunc func(ctx context.Context) (interface{}, error)

type Poller struct {
	Interval time.Duration
	Fetch    FetchFunc
	Renderer *render.Renderer
	Panel    render.Panel
	Target   render.Target

	// Rendered is called after every successful render.
	Rendered func(t render.Target)
}

// Tick runs one fetch and render.
func (p *Poller) Tick(ctx context.Context) error {
	doc, err := p.Fetch(ctx)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to fetch %s", p.Panel.ID)
	}
	p.Renderer.Render(p.Panel, doc, p.Target)
	if p.Rendered != nil {
		p.Rendered(p.Target)
	}
	return nil
}

// Run ticks until ctx is done. The next tick is scheduled only after the
// previous one returned, so ticks never overlap. Failed ticks are logged
// and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	if p.Interval <= 0 {
		return pkgerrors.Errorf("invalid poll interval %v", p.Interval)
	}
	logger := logrus.WithField("panel", p.Panel.ID)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if err := p.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn(err)
		}
		timer.Reset(p.Interval)
	}
}
