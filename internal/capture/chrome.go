package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"

	"github.com/auditlens/seo-audit/internal/logging"
)

// ChromeConfig holds headless-browser capture configuration.
type ChromeConfig struct {
	DesktopWidth   int64
	DesktopHeight  int64
	NavTimeout     time.Duration // full-load attempt
	IdleTimeout    time.Duration // readyState-complete fallback
	DOMTimeout     time.Duration // DOM-ready fallback
	SettleDelay    time.Duration // lazy-load settle after scrolling
	ScreenshotQual int
}

// DefaultChromeConfig returns default capture configuration.
func DefaultChromeConfig() *ChromeConfig {
	return &ChromeConfig{
		DesktopWidth:   1440,
		DesktopHeight:  900,
		NavTimeout:     30 * time.Second,
		IdleTimeout:    20 * time.Second,
		DOMTimeout:     10 * time.Second,
		SettleDelay:    2 * time.Second,
		ScreenshotQual: 90,
	}
}

// ChromeCapture implements PageCapture with a headless Chrome instance.
type ChromeCapture struct {
	cfg *ChromeConfig
	log *logging.Logger
}

// NewChromeCapture creates a new headless-browser page capturer.
func NewChromeCapture(cfg *ChromeConfig) *ChromeCapture {
	if cfg == nil {
		cfg = DefaultChromeConfig()
	}
	return &ChromeCapture{
		cfg: cfg,
		log: logging.Default().WithComponent("page_capture"),
	}
}

// Capture renders the URL, settles lazy-loaded content, and returns
// screenshots plus extracted SEO and accessibility data.
func (c *ChromeCapture) Capture(ctx context.Context, url string) (*Result, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(c.cfg.DesktopWidth, c.cfg.DesktopHeight)); err != nil {
		return nil, fmt.Errorf("failed to set desktop viewport: %w", err)
	}

	if err := c.navigate(tabCtx, url); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	if err := c.settleLazyLoad(tabCtx); err != nil {
		c.log.Warn("lazy-load settle failed, continuing", "url", url, "error", err)
	}

	var html string
	var vitals WebVitals
	var desktopShot []byte
	err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Evaluate(vitalsScript, &vitals),
		chromedp.FullScreenshot(&desktopShot, c.cfg.ScreenshotQual),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture desktop view: %w", err)
	}

	var mobileShot []byte
	err = chromedp.Run(tabCtx,
		chromedp.Emulate(device.IPhoneX),
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.cfg.SettleDelay),
		chromedp.FullScreenshot(&mobileShot, c.cfg.ScreenshotQual),
		chromedp.Emulate(device.Reset),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture mobile view: %w", err)
	}

	desktopShot, err = fitForIngestion(desktopShot)
	if err != nil {
		return nil, fmt.Errorf("desktop screenshot: %w", err)
	}
	mobileShot, err = fitForIngestion(mobileShot)
	if err != nil {
		return nil, fmt.Errorf("mobile screenshot: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}

	return &Result{
		DesktopScreenshot: desktopShot,
		MobileScreenshot:  mobileShot,
		Accessibility:     CheckAccessibility(doc),
		SEO:               ExtractSEO(doc),
		Vitals:            vitals,
	}, nil
}

// navigate loads the page with decreasingly strict wait conditions so a
// slow third-party resource cannot hang the whole capture: full load, then
// readyState complete, then DOM ready. Each attempt has its own timeout.
func (c *ChromeCapture) navigate(ctx context.Context, url string) error {
	attempts := []struct {
		name    string
		timeout time.Duration
		wait    chromedp.Action
	}{
		{"load", c.cfg.NavTimeout, chromedp.WaitVisible("body", chromedp.ByQuery)},
		{"readystate", c.cfg.IdleTimeout, chromedp.Poll(`document.readyState === "complete"`, nil)},
		{"domready", c.cfg.DOMTimeout, chromedp.WaitReady("body", chromedp.ByQuery)},
	}

	var lastErr error
	for _, attempt := range attempts {
		attemptCtx, cancel := context.WithTimeout(ctx, attempt.timeout)
		err := chromedp.Run(attemptCtx, chromedp.Navigate(url), attempt.wait)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		c.log.Warn("navigation attempt failed", "url", url, "strategy", attempt.name, "error", err)
	}
	return lastErr
}

// settleLazyLoad scrolls through the page to trigger lazy-loaded content,
// then returns to the top before screenshots are taken.
func (c *ChromeCapture) settleLazyLoad(ctx context.Context) error {
	return chromedp.Run(ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
		chromedp.Sleep(c.cfg.SettleDelay/2),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(c.cfg.SettleDelay),
		chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
		chromedp.Sleep(c.cfg.SettleDelay/4),
	)
}

// vitalsScript reads navigation/paint timing as an approximation of the
// core web vitals. FID needs real user input and CLS a PerformanceObserver
// registered before load, so both fall back to zero when unavailable.
const vitalsScript = `(() => {
	const nav = performance.getEntriesByType('navigation')[0];
	const paint = performance.getEntriesByType('paint');
	const fcp = paint.find(p => p.name === 'first-contentful-paint');
	const lcpEntries = performance.getEntriesByType('largest-contentful-paint');
	const lcp = lcpEntries.length ? lcpEntries[lcpEntries.length - 1].startTime
		: (fcp ? fcp.startTime : (nav ? nav.loadEventEnd : 0));
	return { lcp: lcp || 0, fid: 0, cls: 0 };
})()`
