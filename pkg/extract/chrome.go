package extract

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// ChromeFetcher renders pages in a headless browser before reading their
// text, for sites that assemble content with JavaScript. Each Fetch spawns
// its own browser context, so the fetcher is safe for concurrent use at the
// cost of a browser launch per page.
type ChromeFetcher struct {
	// ExtraFlags are appended to the default allocator options.
	ExtraFlags []chromedp.ExecAllocatorOption
}

// NewChromeFetcher creates a headless-browser fetcher.
func NewChromeFetcher() *ChromeFetcher {
	return &ChromeFetcher{}
}

// Fetch navigates to the URL and returns the rendered body text.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	opts = append(opts, f.ExtraFlags...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var text string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return text, nil
}
