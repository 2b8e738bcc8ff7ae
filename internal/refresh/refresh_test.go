package refresh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dashcal/internal/ics"
	"dashcal/internal/model"
	"dashcal/internal/store"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:a\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250120T090000Z\r\n" +
	"DTEND:20250120T100000Z\r\n" +
	"SUMMARY:Imported\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestRunOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.ics")
	if err := os.WriteFile(path, []byte(feed), 0o600); err != nil {
		t.Fatal(err)
	}

	s := store.New()
	r := &Refresher{
		Fetcher:  ics.NewFetcher(filepath.Join(dir, "cache")),
		Sink:     s,
		Sources:  []ics.Source{{ID: "feed", Path: path}},
		Location: time.UTC,
	}

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if ev, ok := s.Get("feed:a"); !ok || ev.Title != "Imported" {
		t.Fatalf("imported event = %+v, %v", ev, ok)
	}

	// Re-running after a change replaces instead of duplicating.
	changed := strings.Replace(feed, "SUMMARY:Imported", "SUMMARY:Moved", 1)
	if err := os.WriteFile(path, []byte(changed), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce() error = %v", err)
	}
	if ev, _ := s.Get("feed:a"); s.Len() != 1 || ev.Title != "Moved" {
		t.Errorf("after second run Len() = %d, title %q", s.Len(), ev.Title)
	}

	r.Sources = append(r.Sources, ics.Source{ID: "missing", Path: filepath.Join(dir, "nope.ics")})
	if err := r.RunOnce(context.Background()); err == nil {
		t.Errorf("RunOnce() with a missing file should report an error")
	}
	if s.Len() != 1 {
		t.Errorf("healthy source lost events after a sibling failed")
	}
}

func TestRunOnceKeepsLocalEditsWhileFeedUnchanged(t *testing.T) {
	var version atomic.Int32
	version.Store(1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		etag := `"v1"`
		body := feed
		if version.Load() == 2 {
			etag = `"v2"`
			body = strings.Replace(feed, "SUMMARY:Imported", "SUMMARY:Renamed upstream", 1)
		}
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	s := store.New()
	r := &Refresher{
		Fetcher:  ics.NewFetcher(t.TempDir()),
		Sink:     s,
		Sources:  []ics.Source{{ID: "f", URL: srv.URL + "/feed.ics"}},
		Location: time.UTC,
	}
	ctx := context.Background()

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	edited := "Edited locally"
	if _, err := s.UpdateEvent("f:a", model.EventPatch{Title: &edited}); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	tests := []struct {
		name     string
		version  int32
		expected string
	}{
		{name: "not modified keeps edit", version: 1, expected: edited},
		{name: "changed feed replaces", version: 2, expected: "Renamed upstream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version.Store(tt.version)
			if err := r.RunOnce(ctx); err != nil {
				t.Fatalf("RunOnce() error = %v", err)
			}
			if ev, _ := s.Get("f:a"); ev.Title != tt.expected {
				t.Errorf("title = %q, expected %q", ev.Title, tt.expected)
			}
		})
	}
}

func TestValidateSpec(t *testing.T) {
	if err := ValidateSpec("*/15 * * * *"); err != nil {
		t.Errorf("ValidateSpec() error = %v", err)
	}
	if err := ValidateSpec("every now and then"); err == nil {
		t.Errorf("ValidateSpec() should reject garbage")
	}

	r := &Refresher{Fetcher: ics.NewFetcher(t.TempDir()), Sink: store.New()}
	if err := r.Start(context.Background(), "bogus"); err == nil {
		t.Errorf("Start() should reject an invalid cron expression")
	}
}
