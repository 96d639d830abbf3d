package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// browser owns a headless Chrome process and replaces it after maxPages
// pages. The scheduler keeps one Fetcher alive for days, and Chrome's
// memory baseline only grows while it runs.
type browser struct {
	mu       sync.Mutex
	rod      *rod.Browser
	launcher *launcher.Launcher
	pages    int
	maxPages int
}

func newBrowser(maxPages int) (*browser, error) {
	b := &browser{maxPages: maxPages}
	if err := b.launch(); err != nil {
		return nil, err
	}
	return b, nil
}

// acquire returns the current browser, recycling it first if it has served
// maxPages pages. The page count is incremented.
func (b *browser) acquire() *rod.Browser {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxPages > 0 && b.pages >= b.maxPages {
		b.recycle()
	}
	b.pages++
	return b.rod
}

func (b *browser) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	r := rod.New().ControlURL(u)
	if err := r.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.rod = r
	b.launcher = l
	return nil
}

// recycle starts a fresh browser and closes the old one. The old browser is
// kept if the new one fails to launch. Must be called with mu held.
func (b *browser) recycle() {
	oldRod, oldLauncher := b.rod, b.launcher
	if err := b.launch(); err != nil {
		b.rod, b.launcher = oldRod, oldLauncher
		return
	}
	_ = oldRod.Close()
	oldLauncher.Kill()
	b.pages = 0
}

func (b *browser) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.rod != nil {
		err = b.rod.Close()
		b.rod = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}
