package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fitflow/internal/model"
)

const (
	// DefaultBaseURL is the ExerciseDB endpoint on RapidAPI.
	DefaultBaseURL = "https://exercisedb.p.rapidapi.com"
	defaultHost    = "exercisedb.p.rapidapi.com"
)

// Client wraps the ExerciseDB API.
type Client struct {
	apiKey     string
	baseURL    string
	host       string
	limit      int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLimit sets the page size requested from the API. Zero omits the
// parameter and uses the service default.
func WithLimit(limit int) Option {
	return func(c *Client) {
		c.limit = limit
	}
}

// NewClient creates a new ExerciseDB API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		host:       defaultHost,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListExercises returns every exercise, or only those for bodyPart when it
// is not empty and not "all".
func (c *Client) ListExercises(ctx context.Context, bodyPart string) ([]model.Exercise, error) {
	path := "/exercises"
	if bodyPart != "" && bodyPart != model.BodyPartAll {
		path = "/exercises/bodyPart/" + url.PathEscape(bodyPart)
	}

	var records []exerciseRecord
	if err := c.get(ctx, path, &records); err != nil {
		return nil, err
	}

	exercises := make([]model.Exercise, 0, len(records))
	for _, r := range records {
		exercises = append(exercises, r.toModel())
	}
	return exercises, nil
}

// ListBodyParts returns the body part tags known to the service.
func (c *Client) ListBodyParts(ctx context.Context) ([]string, error) {
	var parts []string
	if err := c.get(ctx, "/exercises/bodyPartList", &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	reqURL := c.baseURL + path
	if c.limit > 0 {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(c.limit))
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}

	// RapidAPI authentication
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	return nil
}

// API response types

type exerciseRecord struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Target           string   `json:"target"`
	Equipment        string   `json:"equipment"`
	BodyPart         string   `json:"bodyPart"`
	GifURL           string   `json:"gifUrl"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
}

func (r exerciseRecord) toModel() model.Exercise {
	return model.Exercise{
		ID:        r.ID,
		Name:      r.Name,
		Target:    r.Target,
		Equipment: r.Equipment,
		BodyPart:  r.BodyPart,
		GifURL:    r.GifURL,
		Details: model.ExerciseDetails{
			SecondaryMuscles: r.SecondaryMuscles,
			Instructions:     r.Instructions,
		},
	}
}
