// Package collect acquires stylesheet sources for a page: the raw CSS text
// of every stylesheet plus the coverage ranges the rendering engine reports
// as exercised. Two acquisition paths exist, mirroring the stealth levels:
// a Chrome-backed Collector that tracks CSS rule usage over CDP, and an
// HTTP-only Probe that discovers stylesheets without instrumentation.
//
// The package only produces coverage.Stylesheet records; all analysis is in
// the coverage package.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/lannv1101/css-checker/browser"
	"github.com/lannv1101/css-checker/coverage"
)

// Source produces the stylesheet sources for one page. Implemented by
// Collector (browser) and Probe (HTTP-only); the web layer fakes it in tests.
type Source interface {
	Collect(ctx context.Context, pageURL string) ([]coverage.Stylesheet, error)
}

// Options tunes navigation behaviour.
type Options struct {
	// Stealth is the tab mode. Default: LevelHeadless.
	Stealth browser.StealthLevel
	// NavTimeout bounds a single navigation attempt. Default: 30s.
	NavTimeout time.Duration
	// NavRetries is the number of navigation attempts. Default: 3.
	NavRetries int
	// NavBackoff is the fixed delay between attempts. Default: 2s.
	NavBackoff time.Duration
	// SettleDelay is how long to wait after load for dynamic content to
	// apply its styles before coverage is read. Default: 2s.
	SettleDelay time.Duration

	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Stealth == 0 {
		o.Stealth = browser.LevelHeadless
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}
	if o.NavRetries <= 0 {
		o.NavRetries = 3
	}
	if o.NavBackoff <= 0 {
		o.NavBackoff = 2 * time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 2 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Collector drives a Chrome tab through the CSS rule-usage tracking flow.
type Collector struct {
	mgr  *browser.Manager
	opts Options
}

// NewCollector creates a Collector on top of a running browser Manager.
func NewCollector(mgr *browser.Manager, opts Options) *Collector {
	opts.defaults()
	return &Collector{mgr: mgr, opts: opts}
}

// Collect opens a tab, enables rule-usage tracking before navigating so
// stylesheets loaded during navigation are observed, waits for the page to
// load and settle, then reads back the usage deltas and stylesheet texts.
// Stylesheets are returned in the order Chrome announced them.
func (c *Collector) Collect(ctx context.Context, pageURL string) ([]coverage.Stylesheet, error) {
	tab, err := browser.NewTab(c.mgr, c.opts.Stealth)
	if err != nil {
		return nil, fmt.Errorf("collect: open tab: %w", err)
	}
	defer tab.Close()

	page := tab.Page.Context(ctx)

	// CSS domain requires DOM to be enabled first.
	if err := (proto.DOMEnable{}).Call(page); err != nil {
		return nil, fmt.Errorf("collect: enable DOM domain: %w", err)
	}
	if err := (proto.CSSEnable{}).Call(page); err != nil {
		return nil, fmt.Errorf("collect: enable CSS domain: %w", err)
	}

	// Record stylesheet headers as Chrome announces them. User-agent sheets
	// are not part of the page's delivered CSS and are skipped.
	var mu sync.Mutex
	var order []proto.CSSStyleSheetID
	headers := make(map[proto.CSSStyleSheetID]*proto.CSSCSSStyleSheetHeader)
	go page.EachEvent(func(e *proto.CSSStyleSheetAdded) {
		if e.Header.Origin == proto.CSSStyleSheetOriginUserAgent {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if _, seen := headers[e.Header.StyleSheetID]; !seen {
			headers[e.Header.StyleSheetID] = e.Header
			order = append(order, e.Header.StyleSheetID)
		}
	})()

	if err := (proto.CSSStartRuleUsageTracking{}).Call(page); err != nil {
		return nil, fmt.Errorf("collect: start rule usage tracking: %w", err)
	}

	if err := c.navigate(ctx, page, pageURL); err != nil {
		return nil, err
	}

	// Let dynamic content settle so late style application is counted.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.opts.SettleDelay):
	}

	usage, err := proto.CSSStopRuleUsageTracking{}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("collect: stop rule usage tracking: %w", err)
	}
	ranges := usedRanges(usage.RuleUsage)

	mu.Lock()
	defer mu.Unlock()

	sheets := make([]coverage.Stylesheet, 0, len(order))
	for _, id := range order {
		text, err := proto.CSSGetStyleSheetText{StyleSheetID: id}.Call(page)
		if err != nil {
			// The sheet may have been detached by the page after load.
			c.opts.Logger.Warn("collect: stylesheet text unavailable",
				"id", string(id), "error", err)
			continue
		}
		sheets = append(sheets, coverage.Stylesheet{
			URL:    sheetURL(headers[id]),
			Text:   text.Text,
			Ranges: ranges[id],
		})
	}

	c.opts.Logger.Info("collect: coverage collected",
		"url", pageURL, "stylesheets", len(sheets))
	return sheets, nil
}

// navigate runs the bounded retry loop with fixed backoff. A WaitLoad
// timeout is tolerated — coverage on a partially loaded page is still
// meaningful — but navigation failure after all attempts is not.
func (c *Collector) navigate(ctx context.Context, page *rod.Page, pageURL string) error {
	var lastErr error
	for attempt := 1; attempt <= c.opts.NavRetries; attempt++ {
		navCtx, cancel := context.WithTimeout(ctx, c.opts.NavTimeout)
		err := page.Context(navCtx).Navigate(pageURL)
		if err == nil {
			if err := page.Context(navCtx).WaitLoad(); err != nil {
				c.opts.Logger.Warn("collect: wait load timeout",
					"url", pageURL, "error", err)
			}
			cancel()
			return nil
		}
		cancel()
		lastErr = err
		c.opts.Logger.Warn("collect: navigation failed",
			"url", pageURL, "attempt", attempt, "error", err)

		if attempt < c.opts.NavRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.opts.NavBackoff):
			}
		}
	}
	return fmt.Errorf("collect: navigate %s after %d attempts: %w",
		pageURL, c.opts.NavRetries, lastErr)
}

// usedRanges groups the used entries of the usage report into coverage
// ranges per stylesheet. CDP reports offsets as floats; they are truncated
// into the byte-interval model the engine works with.
func usedRanges(usage []*proto.CSSRuleUsage) map[proto.CSSStyleSheetID][]coverage.Range {
	m := make(map[proto.CSSStyleSheetID][]coverage.Range)
	for _, u := range usage {
		if u == nil || !u.Used {
			continue
		}
		m[u.StyleSheetID] = append(m[u.StyleSheetID], coverage.Range{
			Start: int(u.StartOffset),
			End:   int(u.EndOffset),
		})
	}
	return m
}

// sheetURL maps a stylesheet header to its identifier: the source URL, or
// the inline sentinel for <style> blocks and constructed sheets.
func sheetURL(h *proto.CSSCSSStyleSheetHeader) string {
	if h == nil || h.IsInline || h.SourceURL == "" {
		return coverage.Inline
	}
	return h.SourceURL
}
