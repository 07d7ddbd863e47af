// Package curation turns raw most-popular pages into a curated feed.
//
// This package enables alttube to:
// - Fetch one page of trending videos from the catalog
// - Drop overheated, stale, music and AI-generated entries
// - Apply caller-side filters (shorts, minimum views, text query, hidden ids)
// - Order survivors by views-per-hour, lowest first, surfacing videos
//   still gathering speed ahead of merely old-and-popular ones
package curation

import (
	"context"
	"sort"
	"strings"
	"time"

	"alttube/internal/classify"
	"alttube/internal/youtube"
)

// shortMaxSeconds is the exclusive upper bound for a video to count as a
// short. A decoded duration of 0 means unknown and is never a short.
const shortMaxSeconds = 60

// CatalogClient fetches raw pages from the video catalog.
type CatalogClient interface {
	FetchTrending(ctx context.Context, req youtube.TrendingRequest) (*youtube.TrendingPage, error)
}

// FilterConfig carries the per-query curation parameters. A zero value
// disables the corresponding predicate; all set predicates are applied
// as independent AND-conditions.
type FilterConfig struct {
	Region     string
	CategoryID string

	// MaxViews drops entries with strictly more views; an entry at
	// exactly MaxViews is retained.
	MaxViews int64

	// MaxAgeDays drops entries published longer ago than the horizon.
	// Entries with an unparseable publish time are retained.
	MaxAgeDays int

	HideShorts bool
	MinViews   int64
	Query      string

	// HiddenIDs suppresses entries the user has already seen. Applied
	// to future pages only; nothing already materialized is touched.
	HiddenIDs map[string]bool
}

// Page is a curated batch plus the catalog's continuation token. The
// token is preserved even when every entry was filtered out.
type Page struct {
	Items     []youtube.Video `json:"items"`
	NextToken string          `json:"nextPageToken,omitempty"`
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline fetches, filters and ranks trending pages.
type Pipeline struct {
	catalog CatalogClient
	now     func() time.Time
}

// New creates a Pipeline over the given catalog client.
func New(catalog CatalogClient, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchPage pulls one page from the catalog, applies the filter chain
// and returns the surviving entries ranked by views-per-hour ascending.
// Fetch errors propagate untouched: a structured catalog error keeps its
// upstream message, and no partial page is ever returned as success.
// Retry policy belongs to the caller.
func (p *Pipeline) FetchPage(ctx context.Context, cfg FilterConfig, pageToken string) (*Page, error) {
	raw, err := p.catalog.FetchTrending(ctx, youtube.TrendingRequest{
		Region:     cfg.Region,
		CategoryID: cfg.CategoryID,
		PageToken:  pageToken,
	})
	if err != nil {
		return nil, err
	}

	now := p.now()
	items := make([]youtube.Video, 0, len(raw.Videos))
	for _, v := range raw.Videos {
		if retain(v, cfg, now) {
			items = append(items, v)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return Score(items[i], now) < Score(items[j], now)
	})

	return &Page{Items: items, NextToken: raw.NextPageToken}, nil
}

// Score is the ranking key: views divided by age in hours, with age
// clamped to at least one hour so just-published entries do not blow up
// the quotient. A zero publish time scores as if just published.
func Score(v youtube.Video, now time.Time) float64 {
	ageHours := 1.0
	if !v.PublishedAt.IsZero() {
		if h := now.Sub(v.PublishedAt).Hours(); h > 1 {
			ageHours = h
		}
	}
	return float64(v.ViewCount) / ageHours
}

func retain(v youtube.Video, cfg FilterConfig, now time.Time) bool {
	if cfg.MaxViews > 0 && v.ViewCount > cfg.MaxViews {
		return false
	}
	if cfg.MaxAgeDays > 0 && !v.PublishedAt.IsZero() {
		if now.Sub(v.PublishedAt) > time.Duration(cfg.MaxAgeDays)*24*time.Hour {
			return false
		}
	}
	if classify.IsMusicContent(v.CategoryID, v.Title, v.ChannelTitle) {
		return false
	}
	if classify.IsSyntheticContent(v.Title, v.Description, v.ChannelTitle) {
		return false
	}
	if cfg.HiddenIDs[v.ID] {
		return false
	}
	if cfg.HideShorts {
		if s := youtube.ParseDuration(v.Duration); s > 0 && s < shortMaxSeconds {
			return false
		}
	}
	if cfg.MinViews > 0 && v.ViewCount < cfg.MinViews {
		return false
	}
	if q := strings.TrimSpace(cfg.Query); q != "" {
		qq := strings.ToLower(q)
		if !strings.Contains(strings.ToLower(v.Title), qq) &&
			!strings.Contains(strings.ToLower(v.ChannelTitle), qq) {
			return false
		}
	}
	return true
}
