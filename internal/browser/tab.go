package browser

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/slotdiff/highlight"
	"github.com/hazyhaar/slotdiff/pagedom"
)

var (
	//go:embed scripts/capture.js
	captureJS string
	//go:embed scripts/draw.js
	drawJS string
	//go:embed scripts/clear.js
	clearJS string
)

// TabOptions tunes page loading.
type TabOptions struct {
	// NavigateTimeout bounds Navigate + WaitLoad. Default: 30s.
	NavigateTimeout time.Duration
	// Settle waits after load for client-side rendering to finish.
	Settle time.Duration
}

// Tab is an open schedule page. It captures the rendered element tree
// and implements highlight.Surface.
type Tab struct {
	Page   *rod.Page
	URL    string
	logger *slog.Logger
	router *rod.HijackRouter
}

var _ highlight.Surface = (*Tab)(nil)

// OpenTab creates a stealth tab, applies the viewport and resource
// blocking, navigates to pageURL and waits for load.
func OpenTab(ctx context.Context, mgr *Manager, pageURL string, opts TabOptions) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 30 * time.Second
	}
	log := mgr.cfg.Logger

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	t := &Tab{Page: page, URL: pageURL, logger: log}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             mgr.cfg.ViewportWidth,
		Height:            mgr.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		log.Warn("browser: set viewport failed", "error", err)
	}

	if len(mgr.cfg.ResourceBlocking) > 0 {
		if t.router, err = blockResources(page, mgr.cfg.ResourceBlocking); err != nil {
			log.Warn("browser: resource blocking failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, opts.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	if opts.Settle > 0 {
		select {
		case <-ctx.Done():
			_ = t.Close()
			return nil, fmt.Errorf("browser: settle: %w", ctx.Err())
		case <-time.After(opts.Settle):
		}
	}

	log.Info("browser: tab ready", "url", pageURL)
	return t, nil
}

// Capture snapshots the rendered element tree: tags, attributes,
// innerText, computed background and viewport boxes. Overlay markers are
// left out.
func (t *Tab) Capture(ctx context.Context) (*pagedom.Document, error) {
	res, err := t.Page.Context(ctx).Eval(captureJS)
	if err != nil {
		return nil, fmt.Errorf("browser: capture: %w", err)
	}
	return decodeCapture(res.Value.Str())
}

func decodeCapture(raw string) (*pagedom.Document, error) {
	var c pagedom.Capture
	if err := sonic.UnmarshalString(raw, &c); err != nil {
		return nil, fmt.Errorf("browser: decode capture: %w", err)
	}
	doc, err := pagedom.FromCapture(c)
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	return doc, nil
}

// Clear removes every overlay and label from the page.
func (t *Tab) Clear(ctx context.Context) error {
	res, err := t.Page.Context(ctx).Eval(clearJS, pagedom.OverlayClass, pagedom.LabelClass)
	if err != nil {
		return fmt.Errorf("browser: clear overlays: %w", err)
	}
	t.logger.Debug("browser: overlays cleared", "removed", res.Value.Int())
	return nil
}

// Draw appends overlay boxes and labels to the page body.
func (t *Tab) Draw(ctx context.Context, overlays []highlight.Overlay) error {
	_, err := t.Page.Context(ctx).Eval(drawJS, overlays, highlight.PulseKeyframes,
		pagedom.OverlayClass, pagedom.LabelClass)
	if err != nil {
		return fmt.Errorf("browser: draw overlays: %w", err)
	}
	return nil
}

// Screenshot captures the visible viewport as PNG.
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	png, err := t.Page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}
	return png, nil
}

// Close stops request interception and closes the tab.
func (t *Tab) Close() error {
	if t.router != nil {
		_ = t.router.Stop()
		t.router = nil
	}
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
