package senec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solarwallbox/solarwallbox/pkg/breaker"
)

// Client reads a SENEC.Home V3 hybrid appliance.
type Client struct {
	baseURL          string
	apiPath          string
	fallbackCapacity float64
	httpClient       *http.Client
	brk              *breaker.Breaker
}

// NewClient creates a client for the appliance at deviceIP. deviceIP may
// carry a scheme ("https://10.0.0.2"); plain http is assumed otherwise.
// fallbackCapacityWh is reported when the appliance does not know its
// design capacity.
func NewClient(deviceIP, apiPath string, fallbackCapacityWh float64) *Client {
	if apiPath == "" {
		apiPath = "/lala.cgi"
	}
	return &Client{
		baseURL:          baseURL(deviceIP),
		apiPath:          apiPath,
		fallbackCapacity: fallbackCapacityWh,
		httpClient:       &http.Client{Timeout: 5 * time.Second},
		brk:              breaker.New("senec", breaker.DefaultConfig),
	}
}

func baseURL(deviceIP string) string {
	if strings.Contains(deviceIP, "://") {
		return strings.TrimSuffix(deviceIP, "/")
	}
	return "http://" + deviceIP
}

// Fetch reads, decodes and normalizes the current appliance values. The
// daily aggregates are left zero; see Daily.
func (c *Client) Fetch(ctx context.Context) (*Data, error) {
	var raw map[string]map[string]json.RawMessage
	err := c.brk.Execute(ctx, func(ctx context.Context) error {
		var err error
		raw, err = c.post(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	v, err := decodeSections(raw)
	if err != nil {
		return nil, err
	}

	return fromValues(v, c.fallbackCapacity), nil
}

func (c *Client) post(ctx context.Context) (map[string]map[string]json.RawMessage, error) {
	url := c.baseURL + c.apiPath
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"url": url,
	}).Trace("requesting senec values")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to reach senec appliance at %s", c.baseURL)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Errorf("failed to close response body: %v", err)
		}
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("senec appliance returned %d: %s", resp.StatusCode, string(b))
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal senec response")
	}
	return raw, nil
}
