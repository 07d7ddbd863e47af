// Package youtube provides a client for the YouTube Data API v3.
//
// This package enables alttube to:
// - Fetch the most-popular chart for a region, one page at a time
// - Resume pagination with the API's continuation token
// - List the video categories available in a region
// - Decode compact ISO-8601 duration codes into seconds
package youtube

import "time"

// Video is one entry from the most-popular chart.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	CategoryID   string    `json:"category_id"`
	Thumbnail    string    `json:"thumbnail"`
	PublishedAt  time.Time `json:"published_at"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	Duration     string    `json:"duration"`
	URL          string    `json:"url"`
}

// Category is a catalog-defined video category for a region.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TrendingRequest describes one page of the most-popular chart.
type TrendingRequest struct {
	Region     string
	CategoryID string
	PageToken  string
}

// TrendingPage is one fetched page plus the token for the next one.
// An empty NextPageToken means the chart has no further pages.
type TrendingPage struct {
	Videos        []Video
	NextPageToken string
}
