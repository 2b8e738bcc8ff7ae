package ics

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

	"dashcal/internal/model"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:session-1\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250120T093000Z\r\n" +
	"DTEND:20250120T101500Z\r\n" +
	"SUMMARY:Onboarding session\r\n" +
	"LOCATION:Room A\r\n" +
	"X-DASHCAL-COLOR:green\r\n" +
	"X-DASHCAL-CLIENT:Acme Corp\r\n" +
	"X-DASHCAL-CLIENT-ID:c-1001\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20250125\r\n" +
	"DTEND;VALUE=DATE:20250126\r\n" +
	"SUMMARY:Office closed\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:weekly\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250121T140000Z\r\n" +
	"SUMMARY:Weekly sync\r\n" +
	"RRULE:FREQ=WEEKLY;COUNT=4\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:broken\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250122T100000Z\r\n" +
	"DTEND:20250122T090000Z\r\n" +
	"SUMMARY:Ends before it starts\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250123T100000Z\r\n" +
	"DTEND:20250123T110000Z\r\n" +
	"SUMMARY:No UID\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	events, err := Parse(Source{ID: "crm"}, []byte(sampleICS), time.UTC)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Parse() returned %d events, expected 3", len(events))
	}

	byID := make(map[string]model.Event)
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	s, ok := byID["crm:session-1"]
	if !ok {
		t.Fatalf("missing crm:session-1, got %v", byID)
	}
	if s.Title != "Onboarding session" || s.Location != "Room A" || s.Color != model.ColorGreen {
		t.Errorf("session = %+v", s)
	}
	if s.ClientName != "Acme Corp" || s.ClientID != "c-1001" || s.Source != "crm" {
		t.Errorf("session client fields = %+v", s)
	}
	if !s.Start.Equal(time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)) || s.Duration() != 45*time.Minute {
		t.Errorf("session times = %v-%v", s.Start, s.End)
	}

	h := byID["crm:holiday"]
	if !h.Start.Equal(time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)) || h.Duration() != 24*time.Hour {
		t.Errorf("all-day event = %v-%v", h.Start, h.End)
	}
	if h.Color != model.DefaultColor {
		t.Errorf("all-day color = %q", h.Color)
	}

	w := byID["crm:weekly"]
	if !w.Start.Equal(time.Date(2025, 1, 21, 14, 0, 0, 0, time.UTC)) || w.Duration() != time.Hour {
		t.Errorf("recurring event first instance = %v-%v", w.Start, w.End)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(Source{ID: "x"}, nil, time.UTC); err == nil {
		t.Errorf("Parse(nil) should fail")
	}
}

func TestExportRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)
	in := []model.Event{
		{ID: "e1", Title: "Invoice review", Start: start, End: start.Add(45 * time.Minute), Color: model.ColorRed,
			Description: "Monthly pass", Location: "Finance office", ClientName: "Globex", ClientID: "c-1002"},
		{ID: "e2", Title: "Call", Start: start.Add(24 * time.Hour), End: start.Add(25 * time.Hour)},
	}

	body := Export(in, start)
	if !strings.Contains(string(body), "BEGIN:VCALENDAR") || !strings.Contains(string(body), "X-DASHCAL-COLOR:red") {
		t.Fatalf("Export() output missing expected lines:\n%s", body)
	}

	out, err := Parse(Source{ID: "rt"}, body, time.UTC)
	if err != nil {
		t.Fatalf("Parse(Export()) error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip returned %d events, expected %d", len(out), len(in))
	}
	for i := range in {
		got := out[i]
		want := in[i]
		if got.ID != "rt:"+want.ID || got.Title != want.Title || got.Location != want.Location {
			t.Errorf("event %d = %+v, expected %+v", i, got, want)
		}
		if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
			t.Errorf("event %d times = %v-%v, expected %v-%v", i, got.Start, got.End, want.Start, want.End)
		}
		if got.Color != want.Color.Resolve() || got.ClientID != want.ClientID {
			t.Errorf("event %d color/client = %q/%q", i, got.Color, got.ClientID)
		}
	}
}

func TestFetchOneFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.ics")
	if err := os.WriteFile(path, []byte(sampleICS), 0o600); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(t.TempDir())
	res, err := f.FetchOne(context.Background(), Source{ID: "local", Path: path})
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	if string(res.Body) != sampleICS {
		t.Errorf("FetchOne() body mismatch")
	}

	if _, err := f.FetchOne(context.Background(), Source{ID: "none"}); err == nil {
		t.Errorf("FetchOne() without URL or path should fail")
	}
}

func TestFetchOneHTTPCache(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "remote", URL: srv.URL + "/feed.ics?token=secret"}

	first, err := f.FetchOne(context.Background(), src)
	if err != nil || first.Freshness != Fresh {
		t.Fatalf("first FetchOne() = %v, freshness=%v", err, first.Freshness)
	}

	tests := []struct {
		name      string
		fail      bool
		freshness Freshness
	}{
		{name: "etag match", fail: false, freshness: NotModified},
		{name: "origin down", fail: true, freshness: Stale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail.Store(tt.fail)
			res, err := f.FetchOne(context.Background(), src)
			if err != nil {
				t.Fatalf("FetchOne() error = %v", err)
			}
			if res.Freshness != tt.freshness {
				t.Errorf("freshness = %v, expected %v", res.Freshness, tt.freshness)
			}
			if string(res.Body) != sampleICS || res.Digest != first.Digest {
				t.Errorf("cached body or digest differs from the downloaded one")
			}
		})
	}

	fail.Store(false)
	results, errs := f.FetchAll(context.Background(), []Source{src, {ID: "bad"}})
	if len(results) != 1 || len(errs) != 1 {
		t.Errorf("FetchAll() = %d results, %d errors", len(results), len(errs))
	}
}

func TestFetchOneIgnoresCacheForOtherURL(t *testing.T) {
	var conditional atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			conditional.Store(true)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	if _, err := f.FetchOne(context.Background(), Source{ID: "feed", URL: srv.URL + "/a.ics"}); err != nil {
		t.Fatal(err)
	}

	res, err := f.FetchOne(context.Background(), Source{ID: "feed", URL: srv.URL + "/b.ics"})
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	if conditional.Load() || res.Freshness != Fresh {
		t.Errorf("moved feed reused validators of the old URL (freshness=%v)", res.Freshness)
	}
}

func TestFetchOneNoCacheOriginDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	if _, err := f.FetchOne(context.Background(), Source{ID: "x", URL: srv.URL}); err == nil {
		t.Errorf("FetchOne() without a cached copy should fail when the origin is down")
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://example.com/path/private.ics?token=abcd", "https://example.com/...(redacted)"},
		{"not a url", "ics://...(redacted)"},
	}
	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.expected {
			t.Errorf("redactURL(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
