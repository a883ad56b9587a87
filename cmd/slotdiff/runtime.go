package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/slotdiff/agent"
	"github.com/hazyhaar/slotdiff/connectivity"
	"github.com/hazyhaar/slotdiff/highlight"
	"github.com/hazyhaar/slotdiff/internal/browser"
	"github.com/hazyhaar/slotdiff/internal/store"
	"github.com/hazyhaar/slotdiff/locate"
	"github.com/hazyhaar/slotdiff/panel"
)

// livePage is an open browser tab and the agent driving it.
type livePage struct {
	mgr   *browser.Manager
	tab   *browser.Tab
	agent *agent.Agent
}

func (p *livePage) Close() {
	_ = p.tab.Close()
	_ = p.mgr.Close()
}

func (a *app) openPage(ctx context.Context, url string) (*livePage, error) {
	if url == "" {
		return nil, errors.New("no page: set page.url or SLOTDIFF_PAGE_URL")
	}
	mode, err := browser.ParseMode(a.cfg.Browser.Stealth)
	if err != nil {
		return nil, err
	}
	mgr := browser.NewManager(browser.Config{
		RemoteURL:        a.cfg.Browser.Remote,
		Mode:             mode,
		XvfbDisplay:      a.cfg.Browser.XvfbDisplay,
		ResourceBlocking: a.cfg.Browser.ResourceBlocking,
		ViewportWidth:    a.cfg.Browser.ViewportWidth,
		ViewportHeight:   a.cfg.Browser.ViewportHeight,
		Logger:           a.logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return nil, err
	}
	tab, err := browser.OpenTab(ctx, mgr, url, browser.TabOptions{
		NavigateTimeout: a.cfg.Page.NavigateTimeout,
		Settle:          a.cfg.Page.Settle,
	})
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}
	return &livePage{mgr: mgr, tab: tab, agent: a.newAgent(tab)}, nil
}

func (a *app) newAgent(page agent.Page) *agent.Agent {
	return agent.New(page,
		agent.WithLogger(a.logger),
		agent.WithExtractor(locate.New(locate.WithLogger(a.logger))),
		agent.WithHighlighter(highlight.New(
			highlight.WithLabels(a.labels()),
			highlight.WithLogger(a.logger),
		)),
	)
}

// bridgeRoute is the page route when the agent runs elsewhere.
func (a *app) bridgeRoute() connectivity.Route {
	rt := connectivity.Route{
		Service:  panel.PageService,
		Strategy: "http",
		Endpoint: a.cfg.Bridge.Endpoint,
	}
	if a.cfg.Bridge.Timeout > 0 {
		rt.Config = connectivity.TimeoutConfig(a.cfg.Bridge.Timeout)
	}
	return rt
}

// newPanel wires a panel to the snapshot store and the page agent: the
// remote agent at bridge.endpoint when set, else a browser opened here.
// The returned cleanup releases all of it.
func (a *app) newPanel(ctx context.Context) (*panel.Panel, *livePage, func(), error) {
	st, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	router := connectivity.New(connectivity.WithLogger(a.logger))
	router.RegisterTransport("http", connectivity.HTTPFactory())

	var page *livePage
	if a.cfg.Bridge.Endpoint != "" {
		if err := router.SetRoute(a.bridgeRoute()); err != nil {
			_ = st.Close()
			return nil, nil, nil, fmt.Errorf("bridge: %w", err)
		}
		for _, rt := range router.Routes() {
			a.logger.Info("slotdiff: bridge route", "service", rt.Service, "strategy", rt.Strategy, "endpoint", rt.Endpoint)
		}
	} else {
		if page, err = a.openPage(ctx, a.cfg.Page.URL); err != nil {
			_ = st.Close()
			return nil, nil, nil, err
		}
		router.RegisterLocal(panel.PageService, page.agent.Handler(panel.PageService))
	}

	cleanup := func() {
		_ = router.Close()
		if page != nil {
			page.Close()
		}
		_ = st.Close()
	}
	p := panel.New(router, st, panel.WithLabels(a.labels()), panel.WithLogger(a.logger))
	return p, page, cleanup, nil
}
