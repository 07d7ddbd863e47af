// Package session owns the curated feed a user pages through.
//
// A Session accumulates curated videos in order, tracks the cursor, and
// remembers which videos the user has seen or liked across sessions via
// the preference store. It requests additional pages from the curation
// pipeline on demand; at most one page load is in flight at a time, and
// a load answered after a region change is discarded as stale.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"alttube/internal/curation"
	"alttube/internal/youtube"
)

// ErrLoadInFlight is returned when a load is requested while a previous
// one has not finished. The caller should simply wait and retry.
var ErrLoadInFlight = errors.New("a page load is already in flight")

// defaultRegion is used until the user picks one.
const defaultRegion = "US"

// PageFetcher produces curated pages; implemented by curation.Pipeline.
type PageFetcher interface {
	FetchPage(ctx context.Context, cfg curation.FilterConfig, pageToken string) (*curation.Page, error)
}

// Store persists region, seen and liked state across sessions;
// implemented by store.Store.
type Store interface {
	Region(ctx context.Context) (string, error)
	SetRegion(ctx context.Context, code string) error
	SeenIDs(ctx context.Context) (map[string]bool, error)
	MarkSeen(ctx context.Context, id string) error
	LikedIDs(ctx context.Context) (map[string]bool, error)
	ToggleLiked(ctx context.Context, id string) (bool, error)
}

// Session holds the per-run feed state plus the persisted preferences.
type Session struct {
	mu    sync.Mutex
	pipe  PageFetcher
	store Store
	cfg   curation.FilterConfig

	region    string
	videos    []youtube.Video
	cursor    int
	nextToken string
	loaded    bool
	inFlight  bool

	seen  map[string]bool
	liked map[string]bool
}

// New builds a Session seeded from the persisted region and seen/liked
// sets. cfg supplies the curation filters applied to every page; its
// Region and HiddenIDs fields are managed by the session itself.
func New(ctx context.Context, pipe PageFetcher, st Store, cfg curation.FilterConfig) (*Session, error) {
	region, err := st.Region(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore region: %w", err)
	}
	if region == "" {
		region = defaultRegion
	}
	seen, err := st.SeenIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore seen set: %w", err)
	}
	liked, err := st.LikedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore liked set: %w", err)
	}

	return &Session{
		pipe:   pipe,
		store:  st,
		cfg:    cfg,
		region: region,
		seen:   seen,
		liked:  liked,
	}, nil
}

// Load fetches one more curated page. With fresh set, the accumulated
// feed and continuation token are cleared first; otherwise the fetch
// resumes from the stored token. A failed load leaves the previously
// accumulated feed and cursor untouched.
func (s *Session) Load(ctx context.Context, fresh bool) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrLoadInFlight
	}
	s.inFlight = true
	if fresh {
		s.videos = nil
		s.cursor = 0
		s.nextToken = ""
		s.loaded = false
	}
	region := s.region
	token := s.nextToken
	cfg := s.cfg
	cfg.Region = region
	cfg.HiddenIDs = copySet(s.seen)
	s.mu.Unlock()

	page, err := s.pipe.FetchPage(ctx, cfg, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return err
	}
	if s.region != region {
		// The region changed while this fetch was outstanding.
		return nil
	}
	s.appendLocked(page.Items)
	s.nextToken = page.NextToken
	s.loaded = true
	return nil
}

// Advance moves the cursor to the next video. Within the materialized
// feed it never fetches; at the last element it loads one more page when
// a continuation token remains, otherwise it is a no-op (the feed is
// exhausted for this region). The returned video is the one under the
// cursor after the move, nil when the feed is empty.
func (s *Session) Advance(ctx context.Context) (*youtube.Video, error) {
	s.mu.Lock()
	if s.cursor+1 < len(s.videos) {
		s.cursor++
		v := s.videos[s.cursor]
		s.mu.Unlock()
		return &v, nil
	}
	token := s.nextToken
	loaded := s.loaded
	oldLen := len(s.videos)
	s.mu.Unlock()

	if !loaded || token == "" {
		return s.Current(), nil
	}

	if err := s.Load(ctx, false); err != nil {
		if errors.Is(err, ErrLoadInFlight) {
			return s.Current(), nil
		}
		return s.Current(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cursor + 1
	if next > oldLen {
		next = oldLen
	}
	if next >= len(s.videos) {
		// The fetch yielded nothing new; stay on the last known entry.
		next = len(s.videos) - 1
	}
	if next < 0 {
		next = 0
	}
	s.cursor = next
	if s.cursor < len(s.videos) {
		v := s.videos[s.cursor]
		return &v, nil
	}
	return nil, nil
}

// Current returns the video under the cursor, nil when the feed is empty.
func (s *Session) Current() *youtube.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < 0 || s.cursor >= len(s.videos) {
		return nil
	}
	v := s.videos[s.cursor]
	return &v
}

// Videos returns a copy of the accumulated curated feed.
func (s *Session) Videos() []youtube.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]youtube.Video, len(s.videos))
	copy(out, s.videos)
	return out
}

// Cursor returns the current cursor position.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Region returns the session's current region code.
func (s *Session) Region() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// Exhausted reports whether the current region's chart has no further
// pages. It is false before the first load completes.
func (s *Session) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded && s.nextToken == ""
}

// MarkSeen records that the user opened a video and persists the set.
// Idempotent. Seen videos are excluded from future pages only; the
// already-materialized feed keeps them so the one on screen does not
// vanish mid-session.
func (s *Session) MarkSeen(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.seen[id] {
		s.mu.Unlock()
		return nil
	}
	s.seen[id] = true
	s.mu.Unlock()
	return s.store.MarkSeen(ctx, id)
}

// Seen reports whether a video id is in the seen set.
func (s *Session) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[id]
}

// ToggleLiked flips a video's liked state, persists it, and reports the
// new state.
func (s *Session) ToggleLiked(ctx context.Context, id string) (bool, error) {
	liked, err := s.store.ToggleLiked(ctx, id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	if liked {
		s.liked[id] = true
	} else {
		delete(s.liked, id)
	}
	s.mu.Unlock()
	return liked, nil
}

// Liked reports whether a video id is in the liked set.
func (s *Session) Liked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liked[id]
}

// ChangeRegion normalizes and persists a new region code, resets the
// accumulated feed, and loads a fresh first page. The seen and liked
// sets survive the reset.
func (s *Session) ChangeRegion(ctx context.Context, region string) error {
	code, err := NormalizeRegion(region)
	if err != nil {
		return err
	}
	if err := s.store.SetRegion(ctx, code); err != nil {
		return err
	}

	s.mu.Lock()
	s.region = code
	s.videos = nil
	s.cursor = 0
	s.nextToken = ""
	s.loaded = false
	s.mu.Unlock()

	return s.Load(ctx, true)
}

// NormalizeRegion validates a 2-letter region code and uppercases it.
func NormalizeRegion(region string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(region))
	if len(code) != 2 {
		return "", fmt.Errorf("invalid region %q: must be a 2-letter code", region)
	}
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("invalid region %q: must be a 2-letter code", region)
		}
	}
	return code, nil
}

// appendLocked appends new items, dropping ids already materialized
// (upstream pagination can repeat items) and ids already seen.
func (s *Session) appendLocked(items []youtube.Video) {
	existing := make(map[string]bool, len(s.videos))
	for _, v := range s.videos {
		existing[v.ID] = true
	}
	for _, v := range items {
		if existing[v.ID] || s.seen[v.ID] {
			continue
		}
		existing[v.ID] = true
		s.videos = append(s.videos, v)
	}
}

func copySet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}
