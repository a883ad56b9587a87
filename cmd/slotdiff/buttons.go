package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/slotdiff/internal/store"
	"github.com/hazyhaar/slotdiff/panel"
	"github.com/hazyhaar/slotdiff/report"
	"github.com/hazyhaar/slotdiff/schedule"
)

func (a *app) saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "save a|b",
		Short:     "Extract the page and store it as snapshot A or B",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"a", "b"},
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := schedule.ParseSide(args[0])
			if err != nil {
				return err
			}
			p, _, cleanup, err := a.newPanel(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := p.SaveSnapshot(cmd.Context(), side)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "snapshot %s saved: %d slots from %s\n", side.Letter(), len(snap.Data), snap.URL)
			return nil
		},
	}
}

func (a *app) compareCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Diff snapshot A against B and highlight the result on the page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, cleanup, err := a.newPanel(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			cmp, err := p.Compare(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(cmp)
			}
			if err := report.WriteTable(a.stdout, cmp.Differences, report.TableOptions{
				Color:  a.colorOutput(),
				Labels: a.labels(),
			}); err != nil {
				return err
			}
			if cmp.HighlightError != "" {
				fmt.Fprintf(a.stderr, "highlight: %s\n", cmp.HighlightError)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the comparison as JSON")
	return cmd
}

func (a *app) clearHighlightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-highlight",
		Short: "Remove every overlay from the page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, cleanup, err := a.newPanel(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			return p.ClearHighlight(cmd.Context())
		},
	}
}

func (a *app) clearAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-all",
		Short: "Delete both snapshots and clear the page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, cleanup, err := a.newPanel(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			return p.ClearAll(cmd.Context())
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which snapshots are saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			p := panel.New(nil, st, panel.WithLogger(a.logger))
			entries, err := p.Status(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(entries)
			}
			for _, e := range entries {
				if !e.Saved {
					fmt.Fprintf(a.stdout, "%s: not saved\n", e.Side.Letter())
					continue
				}
				taken := time.UnixMilli(e.Timestamp).Format(time.DateTime)
				fmt.Fprintf(a.stdout, "%s: %d slots, %s, %s\n", e.Side.Letter(), e.SlotCount, taken, e.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
