package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Defaults match the layout of the /calendar page.
const (
	DefaultWidth   = 1304
	DefaultHeight  = 984
	DefaultTimeout = 30 * time.Second

	readySelector = `[data-ready="true"]`
)

// Options defines one snapshot of the server-rendered calendar page.
type Options struct {
	// BaseURL is the server root, e.g. "http://127.0.0.1:8080".
	BaseURL string
	// Mode is the view to capture (month, week, day, agenda). Empty leaves
	// the server default.
	Mode string
	// Date is the reference day; zero means today on the server.
	Date time.Time

	// OutputPath is where the PNG is written.
	OutputPath string

	// Width and Height are the viewport in pixels.
	Width  int
	Height int

	// Timeout bounds the whole capture.
	Timeout time.Duration

	// Username and Password are sent as HTTP Basic credentials when the
	// server has basic auth enabled.
	Username string
	Password string
}

// headers returns the extra request headers for the page load, or nil.
func (opts Options) headers() network.Headers {
	if opts.Username == "" && opts.Password == "" {
		return nil
	}
	token := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
	return network.Headers{"Authorization": "Basic " + token}
}

// PageURL builds the /calendar URL for opts.
func (opts Options) PageURL() (string, error) {
	if opts.BaseURL == "" {
		return "", errors.New("capture: BaseURL is required")
	}
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("capture: bad BaseURL: %w", err)
	}
	u.Path = "/calendar"
	q := u.Query()
	if opts.Mode != "" {
		q.Set("mode", opts.Mode)
	}
	if !opts.Date.IsZero() {
		q.Set("date", opts.Date.Format("2006-01-02"))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (opts *Options) normalize() error {
	if opts.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return nil
}

// Snapshot drives a headless Chromium to the calendar page, waits until the
// page marks itself ready and writes a full-page PNG to opts.OutputPath.
func Snapshot(parentCtx context.Context, opts Options) error {
	pageURL, err := opts.PageURL()
	if err != nil {
		return err
	}
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
	}
	if h := opts.headers(); h != nil {
		tasks = append(tasks, network.Enable(), network.SetExtraHTTPHeaders(h))
	}
	tasks = append(tasks,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	)
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
