package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const duckDuckGoURL = "https://duckduckgo.com"

var vqdPattern = regexp.MustCompile(`vqd=["']?([\d-]+)["']?`)

// ImageSearchService finds image URLs through DuckDuckGo's image endpoint.
// It needs the per-query vqd token that the HTML search page embeds.
type ImageSearchService struct {
	baseURL    string
	httpClient *http.Client
}

func NewImageSearchService(baseURL string) *ImageSearchService {
	if baseURL == "" {
		baseURL = duckDuckGoURL
	}
	return &ImageSearchService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FirstImage returns the URL of the first image result, or "" when the search
// has no results.
func (s *ImageSearchService) FirstImage(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New("image search: empty query")
	}

	vqd, err := s.token(ctx, query)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("l", "wt-wt")
	params.Set("o", "json")
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("f", ",,,,,")
	params.Set("p", "1")

	body, err := s.get(ctx, s.baseURL+"/i.js?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("image search: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", errors.New("image search: invalid JSON response")
	}

	return gjson.GetBytes(body, "results.0.image").String(), nil
}

func (s *ImageSearchService) token(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("iax", "images")
	params.Set("ia", "images")

	body, err := s.get(ctx, s.baseURL+"/?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("image search token: %w", err)
	}

	m := vqdPattern.FindSubmatch(body)
	if len(m) < 2 {
		return "", errors.New("image search token: vqd not found")
	}
	return string(m[1]), nil
}

func (s *ImageSearchService) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Referer", s.baseURL+"/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
