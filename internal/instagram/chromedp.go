package instagram

import (
	"context"

	"github.com/chromedp/chromedp"
)

// ChromeBrowser drives a real Chrome instance through chromedp. Allocate
// with NewChromeBrowser and Close when done; the allocator context owns the
// browser process.
type ChromeBrowser struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChromeBrowser launches a browser. Headless is the default; pass
// headful=true when debugging selector breakage locally.
func NewChromeBrowser(parent context.Context, headful bool) (*ChromeBrowser, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if headful {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Spin the browser up eagerly so allocation failures surface here
	// rather than on the first Navigate.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	cancel := func() {
		browserCancel()
		allocCancel()
	}
	return &ChromeBrowser{ctx: browserCtx, cancel: cancel}, nil
}

func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *ChromeBrowser) WaitVisible(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (b *ChromeBrowser) Type(ctx context.Context, selector, text string) error {
	return b.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (b *ChromeBrowser) Click(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// run executes actions on the browser tab while honoring the caller's
// deadline, not just the browser context's.
func (b *ChromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(b.ctx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the browser down.
func (b *ChromeBrowser) Close() {
	b.cancel()
}
