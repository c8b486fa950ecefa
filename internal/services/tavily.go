package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const tavilyURL = "https://api.tavily.com"

// TavilyService runs web searches against the Tavily REST API.
type TavilyService struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
}

func NewTavilyService(baseURL, apiKey string) *TavilyService {
	if baseURL == "" {
		baseURL = tavilyURL
	}
	return &TavilyService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: 1,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic"`
}

// Search returns the results formatted as plain text for a tool message.
func (s *TavilyService) Search(ctx context.Context, query string) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("tavily: TAVILY_API_KEY is not set")
	}

	payload, _ := json.Marshal(tavilyRequest{Query: query, MaxResults: s.maxResults, Topic: "general"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("tavily: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "detail.error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return "", fmt.Errorf("tavily: status %d: %s", resp.StatusCode, msg)
	}

	var out strings.Builder
	if answer := gjson.GetBytes(body, "answer").String(); answer != "" {
		fmt.Fprintf(&out, "Answer: %s\n\n", answer)
	}
	gjson.GetBytes(body, "results").ForEach(func(_, r gjson.Result) bool {
		fmt.Fprintf(&out, "Title: %s\nURL: %s\nContent: %s\n\n",
			r.Get("title").String(), r.Get("url").String(), r.Get("content").String())
		return true
	})

	if out.Len() == 0 {
		return "No results found.", nil
	}
	return strings.TrimSpace(out.String()), nil
}
