package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	appLog "dashcal/internal/log"
)

// Source is one ICS feed whose events are mirrored into the event store.
// Exactly one of URL or Path is expected; Path wins when both are set.
type Source struct {
	ID   string
	URL  string
	Path string
}

// Label returns a log-safe description of where the feed lives.
func (s Source) Label() string {
	if s.Path != "" {
		return s.Path
	}
	return redactURL(s.URL)
}

// Freshness says where a fetched body came from.
type Freshness int

const (
	// Fresh bodies were read from disk or downloaded with a 200.
	Fresh Freshness = iota
	// NotModified bodies are the cached copy, confirmed current by a 304.
	NotModified
	// Stale bodies are the cached copy, served because the origin failed.
	Stale
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case NotModified:
		return "not-modified"
	case Stale:
		return "stale"
	default:
		return fmt.Sprintf("Freshness(%d)", int(f))
	}
}

// FetchResult is the body read for one source.
type FetchResult struct {
	Source    Source
	Body      []byte
	Freshness Freshness
	// Digest is the hex SHA-256 of Body. Equal digests mean identical feeds.
	Digest string
}

func newResult(src Source, body []byte, fr Freshness) FetchResult {
	return FetchResult{Source: src, Body: body, Freshness: fr, Digest: digest(body)}
}

// feedRecord is what the cache remembers about a remote source between
// fetches. A record whose URL no longer matches the source is ignored.
type feedRecord struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Digest       string    `json:"digest"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Fetcher reads ICS feeds from local files or over HTTP. Remote feeds are
// cached per source with their validators so unchanged feeds are answered
// by a 304 and an unreachable origin still yields the last good copy.
type Fetcher struct {
	client *http.Client
	dir    string
}

// NewFetcher creates a Fetcher caching remote bodies under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		dir:    cacheDir,
	}
}

// FetchAll reads every source. Failed sources are logged, wrapped with
// their ID and left out of the results.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	var errs []error

	for _, src := range sources {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			appLog.Error("ics fetch failed", err, "id", src.ID, "source", src.Label())
			errs = append(errs, fmt.Errorf("%s: %w", src.ID, err))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// FetchOne reads a single source.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	switch {
	case src.Path != "":
		body, err := os.ReadFile(src.Path)
		if err != nil {
			return FetchResult{}, err
		}
		return newResult(src, body, Fresh), nil
	case src.URL == "":
		return FetchResult{}, errors.New("source has neither URL nor path")
	}
	return f.fetchRemote(ctx, src)
}

func (f *Fetcher) fetchRemote(ctx context.Context, src Source) (FetchResult, error) {
	rec, cached := f.readCache(src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if rec != nil {
		if rec.ETag != "" {
			req.Header.Set("If-None-Match", rec.ETag)
		}
		if rec.LastModified != "" {
			req.Header.Set("If-Modified-Since", rec.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return f.fallback(src, rec, cached, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return f.fallback(src, rec, cached, err)
		}
		res := newResult(src, body, Fresh)
		next := feedRecord{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			Digest:       res.Digest,
			FetchedAt:    time.Now().UTC(),
		}
		if err := f.writeCache(src, next, body); err != nil {
			appLog.Error("ics cache write failed", err, "id", src.ID)
		}
		appLog.Info("ics feed downloaded", "id", src.ID, "source", src.Label(), "bytes", len(body))
		return res, nil

	case http.StatusNotModified:
		if rec == nil {
			return FetchResult{}, errors.New("304 Not Modified without a cached copy")
		}
		appLog.Debug("ics feed not modified", "id", src.ID, "fetched_at", rec.FetchedAt)
		return newResult(src, cached, NotModified), nil

	default:
		return f.fallback(src, rec, cached, fmt.Errorf("unexpected status %s", resp.Status))
	}
}

// fallback serves the cached copy when the origin could not be read.
func (f *Fetcher) fallback(src Source, rec *feedRecord, cached []byte, cause error) (FetchResult, error) {
	if rec == nil {
		return FetchResult{}, cause
	}
	appLog.Error("ics feed unavailable; serving cached copy", cause,
		"id", src.ID, "source", src.Label(), "fetched_at", rec.FetchedAt)
	return newResult(src, cached, Stale), nil
}

// readCache returns the record and body cached for src, or nil when there is
// none, it belongs to another URL, or the body does not match its digest.
func (f *Fetcher) readCache(src Source) (*feedRecord, []byte) {
	metaPath, bodyPath := f.cachePaths(src)

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, nil
	}
	var rec feedRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.URL != src.URL {
		return nil, nil
	}
	body, err := os.ReadFile(bodyPath)
	if err != nil || digest(body) != rec.Digest {
		return nil, nil
	}
	return &rec, body
}

// writeCache stores the body before the record, so a record always
// describes a complete body.
func (f *Fetcher) writeCache(src Source, rec feedRecord, body []byte) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	metaPath, bodyPath := f.cachePaths(src)
	if err := os.WriteFile(bodyPath, body, 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(metaPath, data, 0o600)
}

// cachePaths names the cache files after the source ID, falling back to a
// hash of the URL for anonymous sources.
func (f *Fetcher) cachePaths(src Source) (meta, body string) {
	name := url.PathEscape(src.ID)
	if src.ID == "" {
		name = digest([]byte(src.URL))[:16]
	}
	return filepath.Join(f.dir, name+".json"), filepath.Join(f.dir, name+".ics")
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// redactURL keeps only scheme and host; feed URLs often embed secret tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
