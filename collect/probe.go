package collect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lannv1101/css-checker/coverage"
)

// Probe is the HTTP-only acquisition path (stealth level 0). No browser, no
// JS, no instrumentation: a single GET of the page, stylesheet discovery
// from the parsed HTML, and a download per external sheet. Every sheet
// comes back with empty ranges — without a rendering engine nothing is
// exercised, so the engine will report all rules unused. Useful for sizing
// the delivered CSS when Chrome is unavailable.
type Probe struct {
	client *http.Client
	ua     string
	logger *slog.Logger
}

// ProbeOption configures a Probe.
type ProbeOption func(*Probe)

// WithClient sets a custom HTTP client.
func WithClient(c *http.Client) ProbeOption {
	return func(p *Probe) { p.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ProbeOption {
	return func(p *Probe) { p.ua = ua }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) ProbeOption {
	return func(p *Probe) { p.logger = l }
}

// NewProbe creates a Probe with sensible defaults.
func NewProbe(opts ...ProbeOption) *Probe {
	p := &Probe{
		client: &http.Client{Timeout: 30 * time.Second},
		ua:     "Mozilla/5.0 (compatible; css-checker/1.0)",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Collect fetches the page, discovers its stylesheets, and downloads the
// external ones. Document order is preserved. External sheets that fail to
// download are skipped with a warning rather than failing the page.
func (p *Probe) Collect(ctx context.Context, pageURL string) ([]coverage.Stylesheet, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("probe: parse url %s: %w", pageURL, err)
	}

	body, err := p.get(ctx, pageURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, fmt.Errorf("probe: fetch page: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("probe: parse html: %w", err)
	}

	var sheets []coverage.Stylesheet
	for _, ref := range findStylesheets(doc) {
		if ref.inline {
			sheets = append(sheets, coverage.Stylesheet{URL: coverage.Inline, Text: ref.text})
			continue
		}
		abs, err := base.Parse(ref.href)
		if err != nil {
			p.logger.Warn("probe: bad stylesheet href", "href", ref.href, "error", err)
			continue
		}
		text, err := p.get(ctx, abs.String(), "text/css,*/*;q=0.1")
		if err != nil {
			p.logger.Warn("probe: stylesheet download failed", "url", abs.String(), "error", err)
			continue
		}
		sheets = append(sheets, coverage.Stylesheet{URL: abs.String(), Text: text})
	}

	p.logger.Info("probe: stylesheets discovered", "url", pageURL, "stylesheets", len(sheets))
	return sheets, nil
}

func (p *Probe) get(ctx context.Context, u, accept string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", p.ua)
	req.Header.Set("Accept", accept)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// styleRef is one discovered stylesheet: either an external href or the
// text of an inline <style> block.
type styleRef struct {
	inline bool
	href   string
	text   string
}

// findStylesheets walks the document and returns <link rel=stylesheet>
// references and <style> blocks in document order.
func findStylesheets(doc *html.Node) []styleRef {
	var refs []styleRef
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Link:
				if isStylesheetLink(n) {
					if href := getAttr(n, "href"); href != "" {
						refs = append(refs, styleRef{href: href})
					}
				}
			case atom.Style:
				refs = append(refs, styleRef{inline: true, text: collectText(n)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs
}

func isStylesheetLink(n *html.Node) bool {
	for _, rel := range strings.Fields(getAttr(n, "rel")) {
		if strings.EqualFold(rel, "stylesheet") {
			return true
		}
	}
	return false
}

// getAttr returns the value of an attribute on a node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// collectText concatenates the text children of a node.
func collectText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
