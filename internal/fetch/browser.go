package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// settleDelay gives page scripts time to build their forms after load.
const settleDelay = time.Second

// Render loads rawURL in headless Chrome and returns the document as it
// stands after scripts have run. Chrome or Chromium must be installed.
func Render(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	if err := validate(rawURL); err != nil {
		return "", err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "browser rendering failed", Cause: err}
	}
	if html == "" {
		return "", &Error{URL: rawURL, Message: fmt.Sprintf("empty document after %v", timeout)}
	}
	return html, nil
}
