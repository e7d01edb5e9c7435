package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab wraps a Rod page prepared for coverage collection: stealth applied,
// configured resource types blocked, no navigation performed yet. The
// collector must enable its CDP domains before navigating so that
// stylesheets loaded during navigation are observed.
type Tab struct {
	Page    *rod.Page
	Stealth StealthLevel
}

// NewTab creates a blank tab with stealth and resource blocking applied.
func NewTab(mgr *Manager, level StealthLevel) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	var page *rod.Page
	var err error

	if level >= LevelHeadless {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if len(mgr.cfg.BlockedResources) > 0 {
		if err := applyResourceBlocking(page, mgr.cfg.BlockedResources); err != nil {
			mgr.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}

	return &Tab{Page: page, Stealth: level}, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
