package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"

	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/dashboard"
	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/render"
	"github.com/solarwallbox/solarwallbox/pkg/version"
)

const (
	defaultHistory = 10
	maxHistory     = 1000
)

// respond writes v as JSON, or rendered through p with format=text. With
// format=values it writes the rendered texts keyed by target id.
func (s *Server) respond(c *gin.Context, p render.Panel, v interface{}) {
	switch f := c.DefaultQuery("format", "json"); f {
	case "json":
		c.IndentedJSON(http.StatusOK, v)
	case "text":
		t := &render.TextTarget{Title: p.Title}
		if err := s.renderer().RenderValue(p, v, t); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		c.String(http.StatusOK, t.String())
	case "values":
		t := render.NewMapTarget()
		if err := s.renderer().RenderValue(p, v, t); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		c.IndentedJSON(http.StatusOK, t.Values())
	default:
		fail(c, http.StatusBadRequest, pkgerrors.Errorf("unknown format %q, expected json, text or values", f))
	}
}

func (s *Server) getPlugins(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, render.Panels())
}

// dashboard serves the snapshot, or switches charging modes when one of
// the set* parameters is present.
func (s *Server) dashboard(c *gin.Context) {
	changes := map[config.ChargingMode]bool{}
	for _, m := range config.ChargingModes {
		v, ok := c.GetQuery(m.QueryParam())
		if !ok {
			continue
		}
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, http.StatusBadRequest, pkgerrors.Errorf("%s must be 0 or 1, got %q", m.QueryParam(), v))
			return
		}
		changes[m] = enabled
	}

	if len(changes) == 0 {
		s.respond(c, render.Dashboard, s.rt.Snapshot())
		return
	}

	for _, m := range config.ChargingModes {
		enabled, ok := changes[m]
		if !ok {
			continue
		}
		if err := s.rt.SetChargingMode(c.Request.Context(), string(m), enabled); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
	}
	success(c)
}

func (s *Server) goECharger(c *gin.Context) {
	raw := c.DefaultQuery("device", "0")
	device, err := strconv.Atoi(raw)
	if err != nil || device < 0 || device >= s.rt.WallboxCount() {
		fail(c, http.StatusBadRequest, pkgerrors.Wrapf(dashboard.ErrUnknownWallbox, "device %q", raw))
		return
	}

	if expr, ok := c.GetQuery("set"); ok {
		setting, value, err := goecharger.ParseSetting(expr)
		if err == nil {
			err = goecharger.Validate(setting, value)
		}
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		if err := s.rt.SetWallbox(c.Request.Context(), device, string(setting), value); err != nil {
			fail(c, http.StatusBadGateway, err)
			return
		}
		success(c)
		return
	}

	d, err := s.rt.Wallbox(c.Request.Context(), device)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	s.respond(c, render.GoECharger, d)
}

func (s *Server) getSenec(c *gin.Context) {
	d, err := s.rt.Senec(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	s.respond(c, render.Senec, d)
}

func (s *Server) getExcess(c *gin.Context) {
	d, err := s.rt.Excess(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	s.respond(c, render.Excess, d)
}

func (s *Server) getHistory(c *gin.Context) {
	if s.history == nil {
		fail(c, http.StatusNotFound, pkgerrors.New("persistence is disabled, set databasePath in the config"))
		return
	}

	n, err := strconv.Atoi(c.DefaultQuery("n", strconv.Itoa(defaultHistory)))
	if err != nil || n < 1 || n > maxHistory {
		fail(c, http.StatusBadRequest, pkgerrors.Errorf("n must be between 1 and %d", maxHistory))
		return
	}

	ms, err := s.history.Latest(c.Request.Context(), n)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, ms)
}

type health struct {
	LastPoll        time.Time              `json:"lastPoll"`
	LastPollTook    time.Duration          `json:"lastPollTook"`
	FailedDevices   []string               `json:"failedDevices,omitempty"`
	PollsLastMinute int                    `json:"pollsLastMinute"`
	Subscribers     int                    `json:"subscribers"`
	DroppedEvents   uint64                 `json:"droppedEvents"`
	Stale           bool                   `json:"stale"`
	RecentPolls     []dashboard.PollRecord `json:"recentPolls,omitempty"`
}

// getHealth reports 503 when no poll finished within three intervals.
func (s *Server) getHealth(c *gin.Context) {
	polls := s.rt.Polls()
	h := health{PollsLastMinute: polls.Streak(time.Minute)}
	if c.Query("polls") == "1" {
		h.RecentPolls = polls.Records()
	}
	if last, ok := polls.Last(); ok {
		h.LastPoll = last.At
		h.LastPollTook = last.Took
		h.FailedDevices = last.Failed
	}
	if s.hub != nil {
		h.Subscribers = s.hub.Subscribers()
		h.DroppedEvents = s.hub.Dropped()
	}
	h.Stale = h.LastPoll.IsZero() || time.Since(h.LastPoll) > 3*s.conf.PollInterval()

	code := http.StatusOK
	if h.Stale {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, h)
}

func (s *Server) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(s.conf)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

// getEvents streams hub events as server-sent events. Repeated name
// parameters restrict the stream to those events.
func (s *Server) getEvents(c *gin.Context) {
	if s.hub == nil {
		fail(c, http.StatusNotFound, pkgerrors.New("events are disabled"))
		return
	}
	ch := s.hub.Subscribe(c.QueryArray("name")...)
	defer s.hub.Unsubscribe(ch)

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
