package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	mmPerInch            = 25.4
)

// ChromedpConfig configures the headless Chrome backend
type ChromedpConfig struct {
	// Timeout bounds one Render call
	Timeout time.Duration
	// RemoteURL points at a running DevTools endpoint; when empty a local
	// browser is launched
	RemoteURL string
	// ExecPath selects the local Chrome binary; empty lets chromedp search
	ExecPath string
	// NoSandbox is required when Chrome runs as root inside a container
	NoSandbox bool
	Scale     float64
	Engine    *HTMLEngine
	Logger    *zap.Logger
}

// ChromedpRenderer prints the HTMLEngine rendition of a document with
// headless Chrome. One browser allocator is shared by all renders; each
// Render opens its own tab.
type ChromedpRenderer struct {
	timeout     time.Duration
	scale       float64
	engine      *HTMLEngine
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)

// NewChromedpRenderer prepares the browser allocator. Chrome itself starts
// lazily on the first Render.
func NewChromedpRenderer(cfg *ChromedpConfig) (*ChromedpRenderer, error) {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	r := &ChromedpRenderer{
		timeout: cfg.Timeout,
		scale:   cfg.Scale,
		engine:  cfg.Engine,
		logger:  cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = defaultChromeTimeout
	}
	if r.scale <= 0 {
		r.scale = defaultScale
	}
	if r.engine == nil {
		r.engine = NewHTMLEngine()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	}
	return r, nil
}

func allocatorOptions(cfg *ChromedpConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// Render converts the document to HTML and prints it to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, doc *Document) (*RenderResult, error) {
	html, err := r.engine.RenderDocument(doc, 1)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		r.logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer closeTab()
	// the tab derives from the allocator, not from ctx
	defer context.AfterFunc(ctx, closeTab)()

	var pdf []byte
	if err := chromedp.Run(tab, r.printTasks(html, doc, &pdf)); err != nil {
		return nil, r.classify(ctx, err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	elapsed := time.Since(started)
	r.logger.Info("PDF rendered with chromedp",
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", doc.PageCount()),
		zap.Duration("duration", elapsed))

	return &RenderResult{
		PDFData:        pdf,
		PageCount:      max(estimatePageCount(pdf), doc.PageCount()),
		RenderDuration: elapsed,
	}, nil
}

// printTasks loads html into a blank tab and prints it edge to edge on
// paper sized to the document
func (r *ChromedpRenderer) printTasks(html string, doc *Document, out *[]byte) chromedp.Tasks {
	width, height := paperSize(doc)
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			*out, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithScale(r.scale).
				Do(ctx)
			return err
		}),
	}
}

// classify maps a chromedp failure onto a RenderError code
func (r *ChromedpRenderer) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", r.timeout), err)
	case errors.Is(ctx.Err(), context.Canceled):
		return NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	case errors.Is(err, exec.ErrNotFound):
		return NewRenderError(ErrCodeBinaryNotFound, "chrome executable not found", err)
	}
	r.logger.Error("chromedp rendering failed", zap.Error(err))
	return NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// paperSize returns the document size in inches, the unit Chrome prints in
func paperSize(doc *Document) (width, height float64) {
	return doc.Width / mmPerInch, doc.Height / mmPerInch
}

// estimatePageCount counts /Type /Page objects, excluding the /Pages tree nodes
func estimatePageCount(pdf []byte) int {
	n := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(n, 1)
}
