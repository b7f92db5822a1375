package interpreter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInterpret_MapsCandidates(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("x-app-id") != "app" || r.Header.Get("x-app-key") != "key" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"exercises":[{"tag_id":317,"user_input":"ran","name":"running","duration_min":30,"nf_calories":300.5,"met":9.8,"photo":{"thumb":"https://example.com/run.png"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("app", "key").WithEndpoint(srv.URL)
	candidates, err := client.Interpret(context.Background(), "ran 3 miles")
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	if got["query"] != "ran 3 miles" {
		t.Errorf("unexpected query %v", got["query"])
	}
	if _, ok := got["weight_kg"]; ok {
		t.Errorf("zero profile fields should be omitted: %v", got)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Name != "running" || c.DurationMin != 30 || c.Calories != 300.5 {
		t.Errorf("unexpected candidate %+v", c)
	}
	if c.PhotoURL != "https://example.com/run.png" || c.UserInput != "ran" {
		t.Errorf("descriptive fields not mapped: %+v", c)
	}
}

func TestInterpret_SendsProfile(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"exercises":[]}`))
	}))
	defer srv.Close()

	client := NewClient("app", "key").
		WithEndpoint(srv.URL).
		WithProfile(Profile{Gender: "female", WeightKg: 61.5, Age: 30})

	candidates, err := client.Interpret(context.Background(), "yoga")
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
	if got["gender"] != "female" || got["weight_kg"] != 61.5 || got["age"] != float64(30) {
		t.Errorf("profile not sent: %v", got)
	}
	if _, ok := got["height_cm"]; ok {
		t.Errorf("zero height should be omitted: %v", got)
	}
}

func TestInterpret_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid app id"}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", "bad").WithEndpoint(srv.URL).Interpret(context.Background(), "swim")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid app id") {
		t.Errorf("unexpected error %v", err)
	}
}
