package instagram

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Browser is the minimal surface of a driven headless browser. The real
// implementation is chromedp-backed (see ChromeBrowser); tests substitute a
// fake that records the step sequence.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
}

// Selector strings tied to the current instagram.com DOM. They break when
// the site ships a redesign; that is the nature of this flow.
const (
	homeURL           = "https://www.instagram.com"
	loginFormSelector = `input[name="username"]`
	usernameSelector  = `input[name="username"]`
	passwordSelector  = `input[type="password"]`
	submitSelector    = `button[type="submit"]`
	reelsLinkSelector = `a[href="/reels/?next=%2F"]`
)

const (
	stepTimeout  = 15 * time.Second
	stepRetries  = 2
	stepInterval = 2 * time.Second
)

// ReelsFlow drives a browser through login and into the reels feed.
type ReelsFlow struct {
	Username string
	Password string
}

// Run executes the flow against the given browser. Each step gets its own
// timeout and a small number of retries with a fixed pause, enough to ride
// out slow page loads without masking a real DOM change.
func (f *ReelsFlow) Run(ctx context.Context, b Browser) error {
	if f.Username == "" || f.Password == "" {
		return fmt.Errorf("instagram: browser flow needs credentials")
	}

	steps := []struct {
		name string
		do   func(ctx context.Context) error
	}{
		{"open home", func(ctx context.Context) error { return b.Navigate(ctx, homeURL) }},
		{"wait for login form", func(ctx context.Context) error { return b.WaitVisible(ctx, loginFormSelector) }},
		{"enter username", func(ctx context.Context) error { return b.Type(ctx, usernameSelector, f.Username) }},
		{"enter password", func(ctx context.Context) error { return b.Type(ctx, passwordSelector, f.Password) }},
		{"submit login", func(ctx context.Context) error { return b.Click(ctx, submitSelector) }},
		{"wait for reels link", func(ctx context.Context) error { return b.WaitVisible(ctx, reelsLinkSelector) }},
		{"open reels", func(ctx context.Context) error { return b.Click(ctx, reelsLinkSelector) }},
	}

	for _, step := range steps {
		backoff := retry.WithMaxRetries(stepRetries, retry.NewConstant(stepInterval))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
			defer cancel()
			if serr := step.do(stepCtx); serr != nil {
				return retry.RetryableError(serr)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("instagram: step %q: %w", step.name, err)
		}
	}
	return nil
}
