package goecharger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/bits"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solarwallbox/solarwallbox/pkg/breaker"
)

// Client talks to a go-eCharger using its local HTTP API (v1).
type Client struct {
	deviceIP   string
	baseURL    string
	httpClient *http.Client
	brk        *breaker.Breaker
}

// NewClient creates a client for the wallbox at deviceIP. deviceIP may
// carry a scheme; plain http is assumed otherwise.
func NewClient(deviceIP string) *Client {
	base := deviceIP
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		deviceIP:   deviceIP,
		baseURL:    strings.TrimSuffix(base, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		brk:        breaker.New("go-echarger "+deviceIP, breaker.DefaultConfig),
	}
}

// Fetch reads the current wallbox status.
func (c *Client) Fetch(ctx context.Context) (*Data, error) {
	return c.get(ctx, "/status")
}

// Set changes one setting and returns the status the wallbox reports back.
// Invalid values are rejected before contacting the device.
func (c *Client) Set(ctx context.Context, s Setting, value string) (*Data, error) {
	key, v, err := deviceCommand(s, value)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"device":  c.deviceIP,
		"setting": s,
		"value":   v,
	}).Info("changing wallbox setting")

	return c.get(ctx, "/mqtt?payload="+url.QueryEscape(key+"="+v))
}

func (c *Client) get(ctx context.Context, path string) (*Data, error) {
	var status map[string]json.RawMessage
	err := c.brk.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to create request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to reach wallbox at %s", c.baseURL)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logrus.Errorf("failed to close response body: %v", err)
			}
		}()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to read response body")
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("wallbox returned %d: %s", resp.StatusCode, string(b))
		}
		if err := json.Unmarshal(b, &status); err != nil {
			return pkgerrors.Wrapf(err, "failed to unmarshal wallbox status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fromStatus(status, c.deviceIP), nil
}

// number reads a field the device sends either as a JSON number or as a
// numeric string.
func number(status map[string]json.RawMessage, key string) float64 {
	raw, ok := status[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, _ = strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	return f
}

func text(status map[string]json.RawMessage, key string) string {
	raw, ok := status[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func fromStatus(status map[string]json.RawMessage, deviceIP string) *Data {
	var nrg []float64
	if raw, ok := status["nrg"]; ok {
		_ = json.Unmarshal(raw, &nrg)
	}
	var power float64
	if len(nrg) > 11 {
		// nrg[11] is the total power in 0.01 kW.
		power = nrg[11] / 100
	}

	car := int(number(status, "car"))
	carState, ok := carStates[car]
	if !ok {
		carState = "unknown"
	}

	errCode := int(number(status, "err"))
	errState, ok := errorStates[errCode]
	if !ok {
		errState = fmt.Sprintf("error %d", errCode)
	}

	acs := int(number(status, "acs"))
	access := "unknown"
	if acs >= 0 && acs < len(accessMethods) {
		access = accessMethods[acs]
	}

	allow := number(status, "alw") == 1

	cards := make([]RFIDCard, 0, len(cardNameKeys))
	for i := range cardNameKeys {
		cards = append(cards, RFIDCard{
			Name:   text(status, cardNameKeys[i]),
			Energy: number(status, cardEnergyKeys[i]),
		})
	}

	// Bits 3-5 of pha are the phases after the contactor.
	pha := uint(number(status, "pha"))

	return &Data{
		Charging: Charging{
			Status:       carState,
			CurrentPower: power,
			PhaUsed:      bits.OnesCount(pha >> 3 & 0b111),
			// dws is in deka-watt-seconds.
			Energy:        number(status, "dws") / 360000,
			MaxAmpere:     int(number(status, "amp")),
			AllowCharging: allow,
		},
		AccessControl: AccessControl{
			AllowCharging: allow,
			AccessMethod:  access,
			UnlockedBy:    int(number(status, "uby")),
			RFIDCards:     cards,
		},
		DeviceSerial: text(status, "sse"),
		FWVersion:    text(status, "fwv"),
		DeviceIP:     deviceIP,
		ErrorState:   errState,
		EnergyTotal:  number(status, "eto"),
	}
}
