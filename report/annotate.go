package report

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/gg"

	"github.com/hazyhaar/slotdiff/highlight"
	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/schedule"
)

// Annotate draws overlays onto a copy of img the way the live page shows
// them: translucent box, solid border, label above.
func Annotate(img image.Image, overlays []highlight.Overlay) image.Image {
	dc := gg.NewContextForImage(img)
	for _, o := range overlays {
		c := o.Color
		dc.DrawRoundedRectangle(o.Box.X, o.Box.Y, o.Box.Width, o.Box.Height, 4)
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 128)
		dc.FillPreserve()
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 255)
		dc.SetLineWidth(3)
		dc.Stroke()

		tw, th := dc.MeasureString(o.Label)
		dc.DrawRoundedRectangle(o.LabelX, o.LabelY, tw+12, th+6, 3)
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 230)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(o.Label, o.LabelX+6, o.LabelY+3, 0, 1)
	}
	return dc.Image()
}

// AnnotatePNG decodes a PNG from r, annotates it and encodes to w.
func AnnotatePNG(r io.Reader, w io.Writer, overlays []highlight.Overlay) error {
	img, err := png.Decode(r)
	if err != nil {
		return fmt.Errorf("report: decode png: %w", err)
	}
	if err := png.Encode(w, Annotate(img, overlays)); err != nil {
		return fmt.Errorf("report: encode png: %w", err)
	}
	return nil
}

// GeometryOverlays lays out overlays for differences that carry a full
// bounding box. Others are skipped: they need a page to be re-located.
func GeometryOverlays(diffs []schedule.Difference, labels schedule.Labels) []highlight.Overlay {
	var out []highlight.Overlay
	for _, d := range diffs {
		if d.X == nil || d.Y == nil || d.Width == nil || d.Height == nil {
			continue
		}
		box := pagedom.Rect{X: *d.X, Y: *d.Y, Width: *d.Width, Height: *d.Height}
		out = append(out, highlight.NewOverlay(d.Type, d.Key, labels.Tag(d), box))
	}
	return out
}
