package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestStore_RegionRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	region, err := s.Region(ctx)
	if err != nil {
		t.Fatalf("read unset region: %v", err)
	}
	if region != "" {
		t.Errorf("unset region should read as empty, got %q", region)
	}

	if err := s.SetRegion(ctx, "DE"); err != nil {
		t.Fatalf("set region: %v", err)
	}
	region, err = s.Region(ctx)
	if err != nil {
		t.Fatalf("read region: %v", err)
	}
	if region != "DE" {
		t.Errorf("expected DE, got %q", region)
	}

	// Last write wins.
	if err := s.SetRegion(ctx, "JP"); err != nil {
		t.Fatalf("overwrite region: %v", err)
	}
	region, _ = s.Region(ctx)
	if region != "JP" {
		t.Errorf("expected JP after overwrite, got %q", region)
	}
}

func TestStore_MarkSeenIsIdempotent(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.MarkSeen(ctx, "abc123"); err != nil {
			t.Fatalf("mark seen: %v", err)
		}
	}

	ids, err := s.SeenIDs(ctx)
	if err != nil {
		t.Fatalf("read seen ids: %v", err)
	}
	if len(ids) != 1 || !ids["abc123"] {
		t.Errorf("expected exactly {abc123}, got %v", ids)
	}
}

func TestStore_ToggleLiked(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	liked, err := s.ToggleLiked(ctx, "vid1")
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !liked {
		t.Error("first toggle should like the video")
	}

	liked, err = s.ToggleLiked(ctx, "vid1")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if liked {
		t.Error("second toggle should remove the like")
	}

	ids, err := s.LikedIDs(ctx)
	if err != nil {
		t.Fatalf("read liked ids: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected an empty liked set after toggling twice, got %v", ids)
	}
}

// TestStore_SurvivesReopen verifies the cross-session contract: state
// written through one handle is visible through a fresh one opened on
// the same directory.
func TestStore_SurvivesReopen(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	if err := s.SetRegion(ctx, "GB"); err != nil {
		t.Fatalf("set region: %v", err)
	}
	if err := s.MarkSeen(ctx, "abc123"); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	if _, err := s.ToggleLiked(ctx, "vid9"); err != nil {
		t.Fatalf("toggle liked: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	region, _ := reopened.Region(ctx)
	if region != "GB" {
		t.Errorf("expected persisted region GB, got %q", region)
	}
	seen, _ := reopened.SeenIDs(ctx)
	if !seen["abc123"] {
		t.Errorf("expected abc123 in the persisted seen set, got %v", seen)
	}
	liked, _ := reopened.LikedIDs(ctx)
	if !liked["vid9"] {
		t.Errorf("expected vid9 in the persisted liked set, got %v", liked)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	if err := s.MarkSeen(ctx, "only-seen"); err != nil {
		t.Fatalf("mark seen: %v", err)
	}

	liked, err := s.LikedIDs(ctx)
	if err != nil {
		t.Fatalf("read liked ids: %v", err)
	}
	if len(liked) != 0 {
		t.Errorf("marking seen must not touch the liked set, got %v", liked)
	}
}
