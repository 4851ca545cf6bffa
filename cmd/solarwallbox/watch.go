package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/solarwallbox/solarwallbox/pkg/poller"
	"github.com/solarwallbox/solarwallbox/pkg/render"
)

const (
	minWatchInterval = 2 * time.Second
	maxWatchInterval = 5 * time.Second
)

func panelIDs() []string {
	var ids []string
	for _, p := range render.Panels() {
		ids = append(ids, p.ID)
	}
	return ids
}

func NewWatchCommand() *cobra.Command {
	interval := minWatchInterval
	device := 0

	cmd := &cobra.Command{
		Use:     "watch [panel]",
		GroupID: gBasic,
		Short:   "Continuously show a panel",
		Long: fmt.Sprintf(`Continuously show a panel, refreshed every --interval (2s to 5s).

Panels: %s. The default is dashboard.

Errors are logged and the next refresh tries again. Stop with Ctrl-C.`, strings.Join(panelIDs(), ", ")),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: panelIDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := render.Dashboard.ID
			if len(args) == 1 {
				id = args[0]
			}
			p, ok := render.PanelByID(id)
			if !ok {
				return fmt.Errorf("unknown panel %q, expected one of %s", id, strings.Join(panelIDs(), ", "))
			}

			if interval < minWatchInterval || interval > maxWatchInterval {
				clamped := min(max(interval, minWatchInterval), maxWatchInterval)
				logrus.Warnf("interval %s is out of range, using %s", interval, clamped)
				interval = clamped
			}

			var q url.Values
			if p.ID == render.GoECharger.ID {
				q = deviceQuery(device)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tty := term.IsTerminal(int(os.Stdout.Fd()))
			t := &render.TextTarget{Title: bold("%s:", p.Title)}
			pl := &poller.Poller{
				Interval: interval,
				Fetch: func(ctx context.Context) (interface{}, error) {
					return apiClient.GetDocument(ctx, p.Href, q)
				},
				Renderer: newRenderer(),
				Panel:    p,
				Target:   t,
				Rendered: func(render.Target) {
					if tty {
						// Clear the screen.
						cmd.Print("\033[H\033[2J")
					}
					cmd.Print(t.String())
					cmd.Printf("\nupdated %s\n", time.Now().Format(time.Kitchen))
					t.Reset()
				},
			}
			return pl.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.DurationVarP(&interval, "interval", "i", interval, "refresh interval")
	f.IntVarP(&device, "device", "d", device, "wallbox index for the go-echarger panel")

	return cmd
}
