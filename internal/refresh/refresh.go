package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dashcal/internal/ics"
	appLog "dashcal/internal/log"
	"dashcal/internal/model"
)

// Sink receives the events imported from one feed.
type Sink interface {
	ReplaceSource(source string, events []model.Event) int
}

// Refresher mirrors ICS feeds into the event store.
type Refresher struct {
	Fetcher  *ics.Fetcher
	Sink     Sink
	Sources  []ics.Source
	Location *time.Location

	// AfterRun, if set, is called after every scheduled run.
	AfterRun func(ctx context.Context)

	mu       sync.Mutex
	imported map[string]string // source ID -> digest of the last imported body
}

// RunOnce fetches and parses every source and swaps its events into the
// sink. A source whose body is identical to the last one imported is left
// alone, so local edits to its events survive until the feed changes. A
// failing source keeps its previously imported events; all failures are
// returned joined.
func (r *Refresher) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.imported == nil {
		r.imported = make(map[string]string)
	}

	results, errs := r.Fetcher.FetchAll(ctx, r.Sources)

	total, skipped := 0, 0
	for _, res := range results {
		id := res.Source.ID
		if r.imported[id] == res.Digest {
			skipped++
			appLog.Debug("refresh: source unchanged", "id", id, "freshness", res.Freshness.String())
			continue
		}
		events, err := ics.Parse(res.Source, res.Body, r.Location)
		if err != nil {
			appLog.Error("refresh: parse failed", err, "id", id)
			errs = append(errs, err)
			continue
		}
		n := r.Sink.ReplaceSource(id, events)
		r.imported[id] = res.Digest
		total += n
		appLog.Info("refresh: source imported", "id", id, "events", n, "freshness", res.Freshness.String())
	}

	appLog.Info("refresh completed",
		"sources", len(r.Sources), "events", total, "unchanged", skipped, "errors", len(errs))
	return errors.Join(errs...)
}

// Start runs RunOnce on the cron schedule spec until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := r.RunOnce(ctx); err != nil {
			appLog.Error("scheduled refresh had errors", err)
		}
		if r.AfterRun != nil {
			r.AfterRun(ctx)
		}
	})
	if err != nil {
		return fmt.Errorf("refresh schedule %q: %w", spec, err)
	}

	c.Start()
	appLog.Info("refresh scheduler started", "spec", spec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("refresh scheduler stopped")
	}()
	return nil
}

// ValidateSpec reports whether spec is a usable standard cron expression.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}
