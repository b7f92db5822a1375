package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fitflow/internal/model"
)

// DefaultEndpoint is the Nutritionix natural-language exercise endpoint.
const DefaultEndpoint = "https://trackapi.nutritionix.com/v2/natural/exercise"

// Profile carries optional body metrics that sharpen calorie estimates.
// Zero values are omitted from the request.
type Profile struct {
	Gender   string
	WeightKg float64
	HeightCm float64
	Age      int
}

// Client wraps the Nutritionix natural exercise API.
type Client struct {
	appID      string
	appKey     string
	endpoint   string
	profile    Profile
	httpClient *http.Client
}

// NewClient creates a new Nutritionix client.
func NewClient(appID, appKey string) *Client {
	return &Client{
		appID:      appID,
		appKey:     appKey,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint returns a copy of c that posts to endpoint.
func (c *Client) WithEndpoint(endpoint string) *Client {
	cp := *c
	cp.endpoint = endpoint
	return &cp
}

// WithProfile returns a copy of c that sends p with every query.
func (c *Client) WithProfile(p Profile) *Client {
	cp := *c
	cp.profile = p
	return &cp
}

// Interpret turns a free-form description such as "ran 3 miles" into zero
// or more structured exercise candidates.
func (c *Client) Interpret(ctx context.Context, text string) ([]model.Candidate, error) {
	body, err := json.Marshal(c.buildRequest(text))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var result exerciseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("JSON decode error: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(result.Exercises))
	for _, e := range result.Exercises {
		candidate := model.Candidate{
			Name:        e.Name,
			UserInput:   e.UserInput,
			DurationMin: e.DurationMin,
			Calories:    e.Calories,
			MET:         e.MET,
		}
		if e.Photo != nil {
			candidate.PhotoURL = e.Photo.Thumb
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (c *Client) buildRequest(text string) exerciseRequest {
	req := exerciseRequest{Query: text}
	if g := strings.TrimSpace(c.profile.Gender); g != "" {
		req.Gender = g
	}
	if c.profile.WeightKg > 0 {
		req.WeightKg = c.profile.WeightKg
	}
	if c.profile.HeightCm > 0 {
		req.HeightCm = c.profile.HeightCm
	}
	if c.profile.Age > 0 {
		req.Age = c.profile.Age
	}
	return req
}

// API request/response types

type exerciseRequest struct {
	Query    string  `json:"query"`
	Gender   string  `json:"gender,omitempty"`
	WeightKg float64 `json:"weight_kg,omitempty"`
	HeightCm float64 `json:"height_cm,omitempty"`
	Age      int     `json:"age,omitempty"`
}

type exerciseResponse struct {
	Exercises []exerciseItem `json:"exercises"`
}

type exerciseItem struct {
	TagID       int     `json:"tag_id"`
	UserInput   string  `json:"user_input"`
	Name        string  `json:"name"`
	DurationMin float64 `json:"duration_min"`
	Calories    float64 `json:"nf_calories"`
	MET         float64 `json:"met"`
	Photo       *photo  `json:"photo"`
}

type photo struct {
	Highres string `json:"highres"`
	Thumb   string `json:"thumb"`
}

type errorResponse struct {
	Message string `json:"message"`
}
