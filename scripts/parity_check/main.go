package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

// Timestamps differ between two deployments of the same data, so they never count as a diff.
var volatileKeys = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"last_login": {},
}

type route struct {
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type routeFile struct {
	Routes []route `json:"routes"`
}

type result struct {
	Route         route
	LegacyStatus  int
	CurrentStatus int
	BodyMatch     bool
	Err           error
}

func (r result) ok() bool {
	return r.Err == nil && r.LegacyStatus == r.CurrentStatus && r.BodyMatch
}

func main() {
	var (
		currentBase string
		legacyBase  string
		routesPath  string
		timeout     time.Duration
	)

	flag.StringVar(&currentBase, "current", "http://localhost:9005", "base URL of this service")
	flag.StringVar(&legacyBase, "legacy", "http://localhost:8000", "base URL of the legacy service")
	flag.StringVar(&routesPath, "routes", filepath.Join("scripts", "parity_check", "routes.json"), "JSON file listing GET routes to compare")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	routes, err := loadRoutes(routesPath)
	if err != nil {
		log.Fatalf("failed to load routes: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var breaking, optional int
	results := make([]result, 0, len(routes))
	for _, rt := range routes {
		res := compare(client, currentBase, legacyBase, rt)
		if !res.ok() {
			if rt.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	report(os.Stdout, results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadRoutes(path string) ([]route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file routeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("no routes defined in %s", path)
	}
	return file.Routes, nil
}

func compare(client *http.Client, currentBase, legacyBase string, rt route) result {
	res := result{Route: rt}

	currentStatus, currentBody, err := fetch(client, currentBase, rt.Path)
	if err != nil {
		res.Err = fmt.Errorf("current: %w", err)
		return res
	}
	legacyStatus, legacyBody, err := fetch(client, legacyBase, rt.Path)
	if err != nil {
		res.Err = fmt.Errorf("legacy: %w", err)
		return res
	}

	res.CurrentStatus = currentStatus
	res.LegacyStatus = legacyStatus
	res.BodyMatch = sameBody(currentBody, legacyBody)
	return res
}

func fetch(client *http.Client, base, path string) (int, []byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	resp, err := client.Get(strings.TrimRight(base, "/") + path)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// sameBody compares two JSON payloads structurally, ignoring volatile keys at any depth.
func sameBody(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(stripVolatile(av), stripVolatile(bv))
}

func stripVolatile(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if _, skip := volatileKeys[k]; skip {
				continue
			}
			out[k] = stripVolatile(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stripVolatile(item)
		}
		return out
	default:
		return v
	}
}

func report(w io.Writer, results []result) {
	fmt.Fprintln(w, "Parity Report")
	fmt.Fprintln(w, "=============")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case !res.ok():
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] GET %s (critical: %t)\n", status, res.Route.Path, res.Route.Critical)
		if res.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", res.Err)
			continue
		}
		fmt.Fprintf(w, "  status current=%d legacy=%d | body match: %t\n", res.CurrentStatus, res.LegacyStatus, res.BodyMatch)
	}
}
