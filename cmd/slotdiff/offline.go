package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/slotdiff/diff"
	"github.com/hazyhaar/slotdiff/highlight"
	"github.com/hazyhaar/slotdiff/locate"
	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/report"
	"github.com/hazyhaar/slotdiff/schedule"
)

var nowMilli = func() int64 { return time.Now().UnixMilli() }

func (a *app) extractCmd() *cobra.Command {
	var file, url string
	var probe bool
	cmd := &cobra.Command{
		Use:   "extract (--file page.html | --url URL)",
		Short: "Print the slots found on a page as a snapshot JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var doc *pagedom.Document
			switch {
			case file != "" && url != "":
				return errors.New("--file and --url are exclusive")
			case file != "":
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				if doc, err = pagedom.Parse(f, "file://"+file); err != nil {
					return err
				}
			default:
				if url == "" {
					url = a.cfg.Page.URL
				}
				page, err := a.openPage(ctx, url)
				if err != nil {
					return err
				}
				defer page.Close()
				if doc, err = page.tab.Capture(ctx); err != nil {
					return err
				}
			}

			ex := locate.New(locate.WithLogger(a.logger))
			if probe {
				return a.printJSON(ex.Probe(doc))
			}
			slots, err := ex.Extract(ctx, doc)
			if err != nil {
				return err
			}
			return a.printJSON(schedule.Snapshot{Data: slots, Timestamp: nowMilli(), URL: doc.URL})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "static HTML file (inline styles give colour and geometry)")
	cmd.Flags().StringVar(&url, "url", "", "live page URL (default page.url)")
	cmd.Flags().BoolVar(&probe, "probe", false, "only report which schedule selectors match")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	var (
		asJSON     bool
		htmlFile   string
		screenshot string
		out        string
	)
	cmd := &cobra.Command{
		Use:   "diff A.json B.json",
		Short: "Compare two snapshot files",
		Long: `diff compares two snapshot files written by "extract" (or bare slot
arrays). With --screenshot it also draws the differences onto a PNG of the
page; --html lets differences without geometry be located by path or text.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (screenshot == "") != (out == "") {
				return errors.New("--screenshot and --out go together")
			}
			snaps := make([]*schedule.Snapshot, 2)
			for i, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if snaps[i], err = schedule.UnmarshalSnapshot(data); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			diffs := diff.Compare(snaps[0].Data, snaps[1].Data, diff.WithLabels(a.labels()))

			if screenshot != "" {
				if err := a.annotate(diffs, htmlFile, screenshot, out); err != nil {
					return err
				}
			}
			if asJSON {
				return a.printJSON(diffs)
			}
			return report.WriteTable(a.stdout, diffs, report.TableOptions{
				Color:  a.colorOutput(),
				Labels: a.labels(),
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print differences as JSON")
	cmd.Flags().StringVar(&htmlFile, "html", "", "page HTML used to locate differences on the screenshot")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "PNG of the page (snapshot B state)")
	cmd.Flags().StringVar(&out, "out", "", "annotated PNG output path")
	return cmd
}

func (a *app) annotate(diffs []schedule.Difference, htmlFile, in, out string) error {
	var overlays []highlight.Overlay
	if htmlFile != "" {
		f, err := os.Open(htmlFile)
		if err != nil {
			return err
		}
		doc, err := pagedom.Parse(f, "file://"+htmlFile)
		f.Close()
		if err != nil {
			return err
		}
		overlays = highlight.New(highlight.WithLabels(a.labels()), highlight.WithLogger(a.logger)).Plan(doc, diffs)
	} else {
		overlays = report.GeometryOverlays(diffs, a.labels())
	}

	src, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.AnnotatePNG(bytes.NewReader(src), &buf, overlays); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	a.logger.Info("annotated screenshot written", "path", out, "overlays", len(overlays), "differences", len(diffs))
	return nil
}
