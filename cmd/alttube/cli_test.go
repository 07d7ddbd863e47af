// Package main tests document the expected behavior of the alttube CLI.
//
// External dependencies mocked:
// - The catalog API via the ALTTUBE_API_URL env var
// - Preference storage via the ALTTUBE_CONFIG_DIR env var
//
// Test requirements (this file serves as documentation):
// - "feed" refuses to run without YT_API_KEY and names the variable
// - "feed" prints the curated page from the catalog
// - "region" persists and reports the preference
// - Invalid region codes are rejected
package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// runCLI executes the root command in-process and captures its output.
func runCLI(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), err
}

func TestFeedCmd_MissingCredential(t *testing.T) {
	t.Setenv("YT_API_KEY", "")

	_, err := runCLI(t, "feed")
	if err == nil {
		t.Fatal("feed without YT_API_KEY should fail")
	}
	if !strings.Contains(err.Error(), "YT_API_KEY") {
		t.Errorf("the error should name the missing variable, got: %v", err)
	}
}

func TestFeedCmd_PrintsCuratedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube/v3/videos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"id": "vid1",
					"snippet": map[string]any{
						"title":        "Workbench tour",
						"channelTitle": "Shop Notes",
						"categoryId":   "26",
						"publishedAt":  "2024-03-01T10:00:00Z",
					},
					"statistics":     map[string]any{"viewCount": "4200"},
					"contentDetails": map[string]any{"duration": "PT9M"},
				},
			},
		})
	}))
	defer server.Close()

	t.Setenv("YT_API_KEY", "test-key")
	t.Setenv("ALTTUBE_API_URL", server.URL)

	out, err := runCLI(t, "feed", "--days", "0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Workbench tour") {
		t.Errorf("expected the curated video in the output, got:\n%s", out)
	}
	if !strings.Contains(out, "Shop Notes") {
		t.Errorf("expected the channel in the output, got:\n%s", out)
	}
}

func TestFeedCmd_SurfacesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	t.Setenv("YT_API_KEY", "test-key")
	t.Setenv("ALTTUBE_API_URL", server.URL)

	_, err := runCLI(t, "feed")
	if err == nil {
		t.Fatal("expected the upstream error to surface")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected the upstream message verbatim, got: %v", err)
	}
}

func TestRegionCmd_PersistsPreference(t *testing.T) {
	t.Setenv("ALTTUBE_CONFIG_DIR", t.TempDir())

	out, err := runCLI(t, "region", "de")
	if err != nil {
		t.Fatalf("set region: %v", err)
	}
	if !strings.Contains(out, "DE") {
		t.Errorf("expected the normalized code in the output, got: %q", out)
	}

	out, err = runCLI(t, "region")
	if err != nil {
		t.Fatalf("show region: %v", err)
	}
	if !strings.Contains(out, "DE") {
		t.Errorf("expected the persisted region, got: %q", out)
	}
}

func TestRegionCmd_RejectsInvalidCode(t *testing.T) {
	t.Setenv("ALTTUBE_CONFIG_DIR", t.TempDir())

	_, err := runCLI(t, "region", "DEU")
	if err == nil {
		t.Fatal("a 3-letter code should be rejected")
	}
}
