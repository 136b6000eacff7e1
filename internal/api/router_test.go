package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lost-algorithm/internal/api"
	"lost-algorithm/internal/command"
	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// stubRenderer writes a PNG signature without drawing anything.
type stubRenderer struct{}

func (stubRenderer) RenderPNG(w io.Writer, _ *game.GameSnapshot) error {
	_, err := w.Write(pngMagic)
	return err
}

func newTestEngine(t *testing.T) *game.Engine {
	t.Helper()
	cfg := game.DefaultEngineConfig()
	cfg.Seed = 7
	return game.NewEngine(cfg)
}

func newTestRouter(t *testing.T, engine *game.Engine, mutate func(*api.RouterConfig)) *httptest.Server {
	t.Helper()
	cfg := api.RouterConfig{
		Engine:          engine,
		RateLimitConfig: &config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		DisableLogging:  true,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	ts := httptest.NewServer(api.NewRouter(cfg))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestAPIHealth(t *testing.T) {
	ts := newTestRouter(t, newTestEngine(t), nil)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestAPIGetState(t *testing.T) {
	ts := newTestRouter(t, newTestEngine(t), nil)

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}

	var snap game.GameSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if snap.State.CurrentZone != game.ZoneHome {
		t.Errorf("Expected home, got %s", snap.State.CurrentZone)
	}
	if snap.State.TotalFragments != game.TotalFragments {
		t.Errorf("Expected %d total fragments, got %d", game.TotalFragments, snap.State.TotalFragments)
	}
	if len(snap.Entities) == 0 {
		t.Error("Expected hub entities in the snapshot")
	}
}

func TestAPIGetZones(t *testing.T) {
	ts := newTestRouter(t, newTestEngine(t), nil)

	resp, err := http.Get(ts.URL + "/api/zones")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var zones []game.ZoneInfo
	if err := json.NewDecoder(resp.Body).Decode(&zones); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(zones) != len(game.ZoneOrder) {
		t.Fatalf("Expected %d zones, got %d", len(game.ZoneOrder), len(zones))
	}
	if !zones[0].Current {
		t.Error("Expected home to be current")
	}
	if zones[1].Name == "" || zones[1].Instructions.Title == "" {
		t.Errorf("Expected forest metadata, got %+v", zones[1])
	}
}

func TestAPISelectZone(t *testing.T) {
	engine := newTestEngine(t)
	ts := newTestRouter(t, engine, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantOK     bool
		wantZone   string
	}{
		{"skip ahead rejected", `{"zone":"galaxy"}`, http.StatusOK, false, "home"},
		{"next zone accepted", `{"zone":"forest"}`, http.StatusOK, true, "forest"},
		{"by index", `{"zone":"0"}`, http.StatusOK, true, "home"},
		{"unknown zone", `{"zone":"moon"}`, http.StatusBadRequest, false, ""},
		{"bad json", `{zone`, http.StatusBadRequest, false, ""},
	}

	// Cases run in order against the same engine
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := postJSON(t, ts.URL+"/api/zone", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if tt.wantStatus != http.StatusOK {
				if out["error"] == nil {
					t.Error("Expected an error message")
				}
				return
			}
			if out["accepted"] != tt.wantOK {
				t.Errorf("Expected accepted=%v, got %v", tt.wantOK, out["accepted"])
			}
			if out["currentZone"] != tt.wantZone {
				t.Errorf("Expected %s, got %v", tt.wantZone, out["currentZone"])
			}
		})
	}
}

func TestAPIInteract(t *testing.T) {
	engine := newTestEngine(t)
	ts := newTestRouter(t, engine, nil)
	engine.SelectZone("test", game.ZoneForest)

	resp, out := postJSON(t, ts.URL+"/api/interact", `{"kind":"reveal","number":7}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if out["applied"] != true {
		t.Errorf("Expected applied, got %v", out["applied"])
	}
	zp, _ := engine.GetState().Zone(game.ZoneForest)
	if len(zp.Forest.RevealedNumbers) != 1 {
		t.Errorf("Expected 1 revealed number, got %v", zp.Forest.RevealedNumbers)
	}

	resp, _ = postJSON(t, ts.URL+"/api/interact", `{"kind":"teleport"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown kind, got %d", resp.StatusCode)
	}
}

func TestAPIPointer(t *testing.T) {
	engine := newTestEngine(t)
	ts := newTestRouter(t, engine, nil)

	resp, out := postJSON(t, ts.URL+"/api/pointer", `{"entity":"portal:forest"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if out["applied"] != true {
		t.Errorf("Expected portal click to apply, got %v", out["applied"])
	}
	if got := engine.GetState().CurrentZone; got != game.ZoneForest {
		t.Errorf("Expected forest, got %s", got)
	}

	resp, _ = postJSON(t, ts.URL+"/api/pointer", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty pointer, got %d", resp.StatusCode)
	}
}

func TestAPICommand(t *testing.T) {
	engine := newTestEngine(t)
	handler := command.NewHandler(engine, config.CommandConfig{RatePerSecond: 1000, Burst: 1000})
	defer handler.Close()
	ts := newTestRouter(t, engine, func(c *api.RouterConfig) { c.Commands = handler })

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"goto", `{"source":"alice","command":"!goto forest"}`, http.StatusOK},
		{"unknown", `{"command":"fly"}`, http.StatusBadRequest},
		{"bad args", `{"command":"reveal seven"}`, http.StatusBadRequest},
		{"empty", `{"command":""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, ts.URL+"/api/command", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}

	if got := engine.GetState().CurrentZone; got != game.ZoneForest {
		t.Errorf("Expected forest after goto, got %s", got)
	}
}

func TestAPIOptionalCollaborators(t *testing.T) {
	ts := newTestRouter(t, newTestEngine(t), nil)

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/command"},
		{"GET", "/api/frame.png"},
		{"GET", "/api/queue/stats"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, bytes.NewReader([]byte(`{"command":"status"}`)))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusServiceUnavailable {
				t.Errorf("Expected 503, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAPIFrame(t *testing.T) {
	ts := newTestRouter(t, newTestEngine(t), func(c *api.RouterConfig) { c.Preview = stubRenderer{} })

	resp, err := http.Get(ts.URL + "/api/frame.png")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, pngMagic) {
		t.Error("Expected PNG signature")
	}
}

func TestAPIEvents(t *testing.T) {
	engine := newTestEngine(t)
	if err := engine.StartEventLog(); err != nil {
		t.Fatalf("StartEventLog failed: %v", err)
	}
	defer engine.StopEventLog()
	ts := newTestRouter(t, engine, nil)

	postJSON(t, ts.URL+"/api/zone", `{"zone":"galaxy"}`)
	postJSON(t, ts.URL+"/api/zone", `{"zone":"forest"}`)

	resp, err := http.Get(ts.URL + "/api/events?limit=10")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var events []game.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Name != "zone_rejected" || events[1].Name != "zone_change" {
		t.Errorf("Expected zone_rejected then zone_change, got %s then %s", events[0].Name, events[1].Name)
	}
	if !strings.HasPrefix(events[1].Source, "http:") {
		t.Errorf("Expected an http source, got %q", events[1].Source)
	}

	bad, err := http.Get(ts.URL + "/api/events?limit=abc")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", bad.StatusCode)
	}
}

func TestAPIRateLimit(t *testing.T) {
	ts := newTestRouter(t, newTestEngine(t), func(c *api.RouterConfig) {
		c.RateLimitConfig = &config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	})

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("Expected burst of 2 to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", codes[2])
	}
}

func TestAPICORS(t *testing.T) {
	ts := newTestRouter(t, newTestEngine(t), nil)

	tests := []struct {
		origin string
		want   string
	}{
		{"http://localhost:5173", "http://localhost:5173"},
		{"https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req, _ := http.NewRequest("GET", ts.URL+"/api/health", nil)
			req.Header.Set("Origin", tt.origin)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
