// Package browser fetches rendered league pages with a headless Chrome.
package browser

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting by the league site
	MinRequestInterval = 2 * time.Second

	// FetchTimeout bounds a single page load
	FetchTimeout = 30 * time.Second
)

// Client renders pages with chromedp and spaces requests out
type Client struct {
	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration

	// WaitSelector must be visible before the page is captured.
	WaitSelector string

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a headless browser client
func NewClient() (*Client, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		interval:     MinRequestInterval,
		WaitSelector: "body",
		allocCtx:     allocCtx,
		cancel:       cancel,
	}, nil
}

// Close releases the browser
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Fetch returns the rendered HTML of url, waiting out the request interval
// first
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.delay(time.Now()); wait > 0 {
		log.Printf("Rate limiting: waiting %v before next request", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	html, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()

	return html, err
}

// delay is how long a request issued at now must wait.
func (c *Client) delay(now time.Time) time.Duration {
	if c.lastRequest.IsZero() {
		return 0
	}
	if elapsed := now.Sub(c.lastRequest); elapsed < c.interval {
		return c.interval - elapsed
	}
	return 0
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	// Stop the browser tab when the caller's deadline passes.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(c.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned for %s", url)
	}

	return htmlContent, nil
}
