// Package main provides a CLI tool for validating budgetlens server endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type endpoint struct {
	path        string
	method      string
	contentType string
	contains    []string
}

var endpoints = []endpoint{
	// Probes
	{path: "/api/health", method: "GET", contentType: "application/json", contains: []string{`"status":"ok"`}},
	{path: "/api/version", method: "GET", contentType: "application/json", contains: []string{`"budgetlens"`}},
	{path: "/api/storage/status", method: "GET", contentType: "application/json", contains: []string{`"encrypted"`}},

	// Ledger
	{path: "/api/transactions?limit=10", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/categories", method: "GET", contentType: "application/json", contains: []string{"cat-groceries"}},
	{path: "/api/budgets", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/goals", method: "GET", contentType: "application/json", contains: nil},

	// Recurring
	{path: "/api/recurring", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/recurring/due", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/recurring/calendar", method: "GET", contentType: "application/json", contains: nil},

	// Analytics
	{path: "/api/analytics/dashboard", method: "GET", contentType: "application/json", contains: []string{"savingsRate"}},
	{path: "/api/analytics/categories", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/analytics/budgets", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/analytics/health", method: "GET", contentType: "application/json", contains: []string{"score"}},
	{path: "/api/analytics/insights", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/analytics/streaks", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/analytics/waterfall", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/analytics/year/" + strconv.Itoa(time.Now().Year()), method: "GET", contentType: "application/json", contains: nil},

	// Export
	{path: "/api/export/csv", method: "GET", contentType: "text/csv", contains: []string{"Date,Type,Category"}},
	{path: "/api/export/json", method: "GET", contentType: "application/json", contains: []string{"transactions"}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	password := flag.String("password", os.Getenv("BUDGET_PASSWORD"), "Unlock an encrypted server before validating")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	if err := ensureUnlocked(client, *url, *password); err != nil {
		fmt.Printf("FAIL storage: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed int
	var slowest result

	for _, ep := range endpoints {
		r := validateEndpoint(client, *url, ep, *verbose)
		if r.duration > slowest.duration {
			slowest = r
		}

		switch {
		case r.err != nil:
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		case r.status != http.StatusOK:
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected 200)\n", r.status)
			if msg := errorMessage(r.body); msg != "" {
				fmt.Printf("     Error: %s\n", msg)
			}
		default:
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)
	if slowest.duration > 0 {
		fmt.Printf("Slowest: %s (%v)\n", slowest.endpoint.path, slowest.duration)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// ensureUnlocked checks /api/storage/status and unlocks a locked server
// when a password is available.
func ensureUnlocked(client *http.Client, baseURL, password string) error {
	resp, err := client.Get(baseURL + "/api/storage/status")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var status struct {
		Encrypted bool `json:"encrypted"`
		Unlocked  bool `json:"unlocked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("invalid status response: %w", err)
	}
	if status.Unlocked {
		return nil
	}
	if password == "" {
		return fmt.Errorf("server is locked; pass -password or set BUDGET_PASSWORD")
	}

	body, _ := json.Marshal(map[string]string{"password": password})
	unlock, err := client.Post(baseURL+"/api/storage/unlock", "application/json", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("unlock failed: %w", err)
	}
	defer unlock.Body.Close()
	if unlock.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(unlock.Body)
		return fmt.Errorf("unlock failed with status %d: %s", unlock.StatusCode, errorMessage(string(raw)))
	}
	return nil
}

// errorMessage extracts the "error" field of a JSON error body
func errorMessage(body string) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(body), &e) != nil {
		return ""
	}
	return e.Error
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint, verbose bool) result {
	start := time.Now()

	req, err := http.NewRequest(ep.method, baseURL+ep.path, nil)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	duration := time.Since(start)

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: duration,
		body:     string(body),
	}

	// Validate content type
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	// Validate JSON if expected
	if ep.contentType == "application/json" {
		var js interface{}
		if err := json.Unmarshal(body, &js); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
	}

	// Validate required content
	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
