package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://www.googleapis.com"

	// pageSize is the maximum the videos endpoint allows per request.
	pageSize = 50
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// APIError is a structured error reported by the YouTube API itself,
// as opposed to a transport failure. Its message is the upstream text,
// passed through verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is a YouTube Data API client authenticated by API key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
}

// NewClient creates a new YouTube API client with the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchTrending retrieves one page of the most-popular chart for a region.
func (c *Client) FetchTrending(ctx context.Context, req TrendingRequest) (*TrendingPage, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", req.Region)
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("key", c.apiKey)
	if req.CategoryID != "" {
		params.Set("videoCategoryId", req.CategoryID)
	}
	if req.PageToken != "" {
		params.Set("pageToken", req.PageToken)
	}

	body, err := c.doRequest(ctx, fmt.Sprintf("%s/youtube/v3/videos?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var response videosResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse videos response: %w", err)
	}
	if response.Error != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: response.Error.Message}
	}

	videos := make([]Video, 0, len(response.Items))
	for _, item := range response.Items {
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		viewCount, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		likeCount, _ := strconv.ParseInt(item.Statistics.LikeCount, 10, 64)

		videos = append(videos, Video{
			ID:           item.ID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelID:    item.Snippet.ChannelID,
			ChannelTitle: item.Snippet.ChannelTitle,
			CategoryID:   item.Snippet.CategoryID,
			Thumbnail:    bestThumbnail(item.Snippet.Thumbnails),
			PublishedAt:  publishedAt,
			ViewCount:    viewCount,
			LikeCount:    likeCount,
			Duration:     item.ContentDetails.Duration,
			URL:          fmt.Sprintf("https://www.youtube.com/watch?v=%s", item.ID),
		})
	}

	return &TrendingPage{
		Videos:        videos,
		NextPageToken: response.NextPageToken,
	}, nil
}

// FetchCategories retrieves the video categories defined for a region.
func (c *Client) FetchCategories(ctx context.Context, region string) ([]Category, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("regionCode", region)
	params.Set("key", c.apiKey)

	body, err := c.doRequest(ctx, fmt.Sprintf("%s/youtube/v3/videoCategories?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var response categoriesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse categories response: %w", err)
	}
	if response.Error != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: response.Error.Message}
	}

	categories := make([]Category, 0, len(response.Items))
	for _, item := range response.Items {
		// Id "0" is the catalog's placeholder bucket.
		if item.ID == "0" || item.Snippet.Title == "" {
			continue
		}
		categories = append(categories, Category{ID: item.ID, Title: item.Snippet.Title})
	}

	return categories, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := errorMessage(body); msg != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
		return nil, c.handleAPIError(resp.StatusCode)
	}

	return body, nil
}

// errorMessage extracts the upstream error text from an error payload,
// or returns "" when the body carries none.
func errorMessage(body []byte) string {
	var payload struct {
		Error *apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error == nil {
		return ""
	}
	return payload.Error.Message
}

// bestThumbnail picks the largest available resolution, degrading gracefully.
func bestThumbnail(t thumbnails) string {
	switch {
	case t.Maxres.URL != "":
		return t.Maxres.URL
	case t.High.URL != "":
		return t.High.URL
	case t.Medium.URL != "":
		return t.Medium.URL
	default:
		return t.Default.URL
	}
}

func (c *Client) handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("YouTube API access denied - check your YT_API_KEY")
	case http.StatusTooManyRequests:
		return fmt.Errorf("YouTube API rate limit exceeded - please try again later")
	case http.StatusServiceUnavailable:
		return fmt.Errorf("YouTube API temporarily unavailable - please try again in a few minutes")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("YouTube API server error - please try again later")
	default:
		return fmt.Errorf("YouTube API error (status %d) - please try again", statusCode)
	}
}

// API response types (private - implementation detail)

type apiErrorBody struct {
	Message string `json:"message"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type thumbnails struct {
	Maxres  thumbnail `json:"maxres"`
	High    thumbnail `json:"high"`
	Medium  thumbnail `json:"medium"`
	Default thumbnail `json:"default"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string     `json:"title"`
			Description  string     `json:"description"`
			ChannelID    string     `json:"channelId"`
			ChannelTitle string     `json:"channelTitle"`
			CategoryID   string     `json:"categoryId"`
			PublishedAt  string     `json:"publishedAt"`
			Thumbnails   thumbnails `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
	NextPageToken string        `json:"nextPageToken"`
	Error         *apiErrorBody `json:"error"`
}

type categoriesResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
	Error *apiErrorBody `json:"error"`
}
