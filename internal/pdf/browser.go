package pdf

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 paper size in inches for Chrome's print pipeline.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// renderTimeout bounds one HTML to PDF conversion. Content is fully
// static with no network fetches, so this is generous.
const renderTimeout = 10 * time.Second

// PageRenderer is what the assembler needs from the browser: render
// pages one at a time, then release the process exactly once.
type PageRenderer interface {
	RenderPage(ctx context.Context, html string) ([]byte, error)
	Close()
}

// BrowserConfig selects the browser binary. Empty ExecPath lets
// chromedp locate an installed Chrome/Chromium; serverless deployments
// point it at their bundled binary.
type BrowserConfig struct {
	ExecPath string
}

// BrowserConfigFromEnv reads CHROME_PATH the way the render references
// in this codebase's lineage do.
func BrowserConfigFromEnv() BrowserConfig {
	return BrowserConfig{ExecPath: os.Getenv("CHROME_PATH")}
}

// Browser drives one headless browser process for the duration of a
// single generation request. Each RenderPage opens its own tab and
// closes it on every path; Close tears the process down once.
type Browser struct {
	browserCtx  context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc

	closeOnce sync.Once
}

// Launch starts the browser process. The returned handle is exclusively
// owned by the caller; Close must be called on every path, success or
// failure.
func Launch(ctx context.Context, cfg BrowserConfig) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Force the process to start now so launch failures surface here,
	// not inside the first page render.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, genErr(KindRenderProcess, "launch_browser", "", fmt.Errorf("browser launch: %w", err))
	}

	return &Browser{
		browserCtx:  browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// RenderPage loads the HTML string into a fresh tab and prints it to a
// single A4 PDF page with zero margins and background graphics on.
// The tab is closed on both success and failure.
func (b *Browser) RenderPage(ctx context.Context, html string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, renderTimeout)
	defer cancelTimeout()

	var pdfBuf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		// Wait only for the load milestone; there are no external
		// resources to settle.
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthInches).
				WithPaperHeight(paperHeightInches).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, genErr(KindRenderTimeout, "render_page", "", fmt.Errorf("page render exceeded %s: %w", renderTimeout, err))
		}
		return nil, genErr(KindRenderProcess, "render_page", "", fmt.Errorf("page render: %w", err))
	}
	return pdfBuf, nil
}

// Close releases the browser process. Safe to call more than once; the
// process is torn down exactly once.
func (b *Browser) Close() {
	b.closeOnce.Do(func() {
		log.Printf("[PDF] releasing browser process")
		b.cancelCtx()
		b.cancelAlloc()
	})
}
