package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/dashboard"
	"github.com/solarwallbox/solarwallbox/pkg/excess"
	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/render"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
)

// result is the body of a mutation.
type result struct {
	Msg   string `json:"msg,omitempty"`
	Error string `json:"error,omitempty"`
}

// Success is the msg of a successful mutation.
const Success = "success!"

func errorMessage(b []byte) string {
	var r result
	if err := json.Unmarshal(b, &r); err != nil {
		return ""
	}
	return r.Error
}

func jsonQuery(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set("format", "json")
	return q
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v interface{}) error {
	b, err := c.Get(ctx, path, jsonQuery(q))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal %s", path)
	}
	return nil
}

// mutate sends a mutation and checks its {msg} or {error} result.
func (c *Client) mutate(ctx context.Context, path string, q url.Values) error {
	b, err := c.Get(ctx, path, q)
	if err != nil {
		return err
	}
	var r result
	if err := json.Unmarshal(b, &r); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal %s result", path)
	}
	if r.Error != "" {
		return &MutationError{Path: path, Msg: r.Error}
	}
	if r.Msg != Success {
		return pkgerrors.Errorf("unexpected result from %s: %q", path, string(b))
	}
	return nil
}

// GetDocument returns the JSON document of path in generic form.
func (c *Client) GetDocument(ctx context.Context, path string, q url.Values) (interface{}, error) {
	var doc interface{}
	if err := c.getJSON(ctx, path, q, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) GetDashboard(ctx context.Context) (*dashboard.Snapshot, error) {
	var s dashboard.Snapshot
	if err := c.getJSON(ctx, "/dashboard", nil, &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get dashboard")
	}
	return &s, nil
}

func deviceQuery(device int) url.Values {
	return url.Values{"device": []string{strconv.Itoa(device)}}
}

func (c *Client) GetWallbox(ctx context.Context, device int) (*goecharger.Data, error) {
	var d goecharger.Data
	if err := c.getJSON(ctx, "/go-echarger", deviceQuery(device), &d); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get wallbox %d", device)
	}
	return &d, nil
}

func (c *Client) GetSenec(ctx context.Context) (*senec.Data, error) {
	var d senec.Data
	if err := c.getJSON(ctx, "/senec", nil, &d); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get senec data")
	}
	return &d, nil
}

func (c *Client) GetExcess(ctx context.Context) (*excess.Data, error) {
	var d excess.Data
	if err := c.getJSON(ctx, "/excess", nil, &d); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get excess power")
	}
	return &d, nil
}

// GetPlugins lists the panels served by the server.
func (c *Client) GetPlugins(ctx context.Context) ([]render.Panel, error) {
	b, err := c.Get(ctx, "/", nil)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get plugins")
	}
	var ps []render.Panel
	if err := json.Unmarshal(b, &ps); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal plugins")
	}
	return ps, nil
}

func (c *Client) GetVersion(ctx context.Context) (string, error) {
	b, err := c.Get(ctx, "/version", nil)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

// SetWallbox changes a setting of the wallbox at index device.
func (c *Client) SetWallbox(ctx context.Context, device int, s goecharger.Setting, value string) error {
	q := deviceQuery(device)
	q.Set("set", string(s)+"="+value)
	return c.mutate(ctx, "/go-echarger", q)
}

func (c *Client) SetAllowCharging(ctx context.Context, device int, allow bool) error {
	return c.SetWallbox(ctx, device, goecharger.SettingAllowCharging, boolParam(allow))
}

func (c *Client) SetMaxAmpere(ctx context.Context, device int, ampere int) error {
	return c.SetWallbox(ctx, device, goecharger.SettingMaxAmpere, strconv.Itoa(ampere))
}

func (c *Client) SetAccessControl(ctx context.Context, device int, method string) error {
	return c.SetWallbox(ctx, device, goecharger.SettingAccessControl, method)
}

func (c *Client) SetChargingMode(ctx context.Context, mode config.ChargingMode, enabled bool) error {
	return c.mutate(ctx, "/dashboard", url.Values{mode.QueryParam(): []string{boolParam(enabled)}})
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
