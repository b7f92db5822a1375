package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fitflow/internal/model"
)

// DefaultSheetKey is the JSON root key Sheety uses for a sheet named "sheet1".
const DefaultSheetKey = "sheet1"

// Sheety stores workouts in a Google Sheet exposed through the Sheety API.
type Sheety struct {
	url        string
	sheetKey   string
	token      string
	httpClient *http.Client
}

// NewSheety creates a Sheety client for the sheet endpoint url. sheetKey is
// the singular sheet name Sheety wraps rows in; empty means DefaultSheetKey.
// token is optional and sent as a bearer token when set.
func NewSheety(url, sheetKey, token string) *Sheety {
	if sheetKey == "" {
		sheetKey = DefaultSheetKey
	}
	return &Sheety{
		url:        url,
		sheetKey:   sheetKey,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// List fetches every row of the sheet.
func (s *Sheety) List(ctx context.Context) ([]model.PersistedLogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}

	var envelope map[string][]sheetRow
	if err := s.do(req, &envelope); err != nil {
		return nil, err
	}

	// Sheety may pluralize the root key on GET.
	rows, ok := envelope[s.sheetKey]
	if !ok {
		rows, ok = envelope[s.sheetKey+"s"]
	}
	if !ok && len(envelope) == 1 {
		for _, v := range envelope {
			rows = v
		}
	}

	entries := make([]model.PersistedLogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}

// Append adds a row to the sheet and returns the row as stored by Sheety.
func (s *Sheety) Append(ctx context.Context, entry model.LogEntry) (model.PersistedLogEntry, error) {
	body, err := json.Marshal(map[string]sheetRow{s.sheetKey: fromModel(entry)})
	if err != nil {
		return model.PersistedLogEntry{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return model.PersistedLogEntry{}, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope map[string]sheetRow
	if err := s.do(req, &envelope); err != nil {
		return model.PersistedLogEntry{}, err
	}

	row, ok := envelope[s.sheetKey]
	if !ok {
		return model.PersistedLogEntry{}, fmt.Errorf("response missing %q", s.sheetKey)
	}
	return row.toModel(), nil
}

func (s *Sheety) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
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

// API types

type sheetRow struct {
	ID       int64  `json:"id,omitempty"`
	Date     string `json:"date"`
	Exercise string `json:"exercise"`
	Duration number `json:"duration"`
	Calories number `json:"calories"`
	Notes    string `json:"notes"`
}

func fromModel(e model.LogEntry) sheetRow {
	return sheetRow{
		Date:     e.Date,
		Exercise: e.Exercise,
		Duration: number(e.Duration),
		Calories: number(e.Calories),
		Notes:    e.Notes,
	}
}

func (r sheetRow) toModel() model.PersistedLogEntry {
	return model.PersistedLogEntry{
		ID:       r.ID,
		Date:     r.Date,
		Exercise: r.Exercise,
		Duration: int(math.Round(float64(r.Duration))),
		Calories: float64(r.Calories),
		Notes:    r.Notes,
	}
}

// number accepts JSON numbers, numeric strings and empty cells, since a
// spreadsheet column holds whatever was typed into it.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = number(v)
	return nil
}
