package client

import (
	"bufio"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/solarwallbox/solarwallbox/pkg/events"
)

// SubscribeEvents streams server events until ctx is done or the
// connection drops. The returned channel is closed afterwards. names
// restricts the stream to those events.
func (c *Client) SubscribeEvents(ctx context.Context, names ...string) <-chan events.Event {
	ch := make(chan events.Event, 16)
	go func() {
		defer close(ch)

		u := c.baseURL + "/events"
		if len(names) > 0 {
			u += "?" + url.Values{"name": names}.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			logrus.Errorf("failed to create events request: %v", err)
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		// The stream outlives the request timeout of c.httpClient.
		resp, err := (&http.Client{Transport: c.httpClient.Transport}).Do(req)
		if err != nil {
			if ctx.Err() == nil {
				logrus.Errorf("failed to subscribe to events: %v", err)
			}
			return
		}
		defer resp.Body.Close()

		var ev events.Event
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				if ev.Name != "" {
					select {
					case ch <- ev:
					case <-ctx.Done():
						return
					}
				}
				ev = events.Event{}
			case strings.HasPrefix(line, "event:"):
				ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				ev.Data = append(ev.Data, strings.TrimSpace(strings.TrimPrefix(line, "data:"))...)
			}
		}
	}()
	return ch
}
