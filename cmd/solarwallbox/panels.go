package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/render"
)

// printPanel fetches the document of p and prints it as text or JSON.
func printPanel(cmd *cobra.Command, p render.Panel, q url.Values, asJSON bool) error {
	if asJSON {
		if q == nil {
			q = url.Values{}
		}
		q.Set("format", "json")
		b, err := apiClient.Get(cmd.Context(), p.Href, q)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", p.ID, err)
		}
		cmd.Println(string(b))
		return nil
	}

	doc, err := apiClient.GetDocument(cmd.Context(), p.Href, q)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", p.ID, err)
	}
	t := &render.TextTarget{Title: bold("%s:", p.Title)}
	newRenderer().Render(p, doc, t)
	cmd.Print(t.String())
	return nil
}

func newPanelCommand(use, short, long string, p render.Panel) *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    long,
		GroupID: gBasic,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printPanel(cmd, p, nil, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON")

	return cmd
}

func NewSenecCommand() *cobra.Command {
	return newPanelCommand(
		"senec",
		"Show the SENEC appliance",
		`Show live values, battery information and energy statistics of the SENEC appliance, including today's minimum, average and maximum.`,
		render.Senec,
	)
}

func NewExcessCommand() *cobra.Command {
	return newPanelCommand(
		"excess",
		"Show the excess solar power",
		`Show the excess solar power: PV production minus house consumption minus battery charging power.`,
		render.Excess,
	)
}

func deviceQuery(device int) url.Values {
	return url.Values{"device": []string{strconv.Itoa(device)}}
}

func NewPluginsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "plugins",
		Short:   "List the panels served by the daemon",
		GroupID: gAdvanced,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := apiClient.GetPlugins(cmd.Context())
			if err != nil {
				return err
			}
			t := &render.TextTarget{Title: bold("Panels:")}
			for _, p := range ps {
				t.Set(p.ID, p.Title, p.Href)
			}
			cmd.Print(t.String())
			return nil
		},
	}
}
