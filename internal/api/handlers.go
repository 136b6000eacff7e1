package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"lost-algorithm/internal/command"
	"lost-algorithm/internal/game"
)

const (
	maxBodyBytes      = 4 << 10
	defaultEventLimit = 50
	maxEventLimit     = 1024
)

// interactionKinds is the closed set accepted by POST /api/interact.
var interactionKinds = map[game.InteractionKind]bool{
	game.InteractReveal:   true,
	game.InteractMove:     true,
	game.InteractColor:    true,
	game.InteractDive:     true,
	game.InteractActivate: true,
	game.InteractSelect:   true,
	game.InteractHover:    true,
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Zones())
}

func (h *routerHandlers) handleSelectZone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Zone string `json:"zone"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	zone, ok := game.ParseZone(req.Zone)
	if !ok {
		writeError(w, "Unknown zone", http.StatusBadRequest)
		return
	}

	// A rejected change is a normal outcome, not an HTTP error
	// Accepted changes are counted by the engine callback
	accepted := h.engine.SelectZone(requestSource(r), zone)
	if !accepted {
		RecordZoneChange(false)
	}
	writeJSON(w, map[string]interface{}{
		"accepted":    accepted,
		"currentZone": h.engine.GetState().CurrentZone,
	})
}

func (h *routerHandlers) handleInteract(w http.ResponseWriter, r *http.Request) {
	var in game.Interaction
	if !decodeBody(w, r, &in) {
		return
	}
	if !interactionKinds[in.Kind] {
		writeError(w, "Unknown interaction kind", http.StatusBadRequest)
		return
	}

	applied := h.engine.Interact(requestSource(r), in)
	RecordInteraction(string(in.Kind), applied)
	writeJSON(w, map[string]interface{}{
		"applied": applied,
		"state":   h.engine.GetState(),
	})
}

func (h *routerHandlers) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entity string     `json:"entity"`
		Point  *game.Vec3 `json:"point"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Entity == "" && req.Point == nil {
		writeError(w, "entity or point is required", http.StatusBadRequest)
		return
	}

	applied := h.engine.Pointer(requestSource(r), req.Entity, req.Point)
	writeJSON(w, map[string]interface{}{
		"applied": applied,
		"state":   h.engine.GetState(),
	})
}

func (h *routerHandlers) handleCommand(w http.ResponseWriter, r *http.Request) {
	if h.commands == nil {
		writeError(w, "Commands not available", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Source  string `json:"source"`
		Command string `json:"command"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	source := req.Source
	if source == "" {
		source = requestSource(r)
	}

	res, err := h.commands.ProcessLine(source, req.Command)
	RecordCommand(err)
	if err != nil {
		writeError(w, err.Error(), commandStatus(err))
		return
	}
	writeJSON(w, res)
}

func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxEventLimit)
	}

	events := h.engine.RecentEvents(limit)
	if events == nil {
		events = []game.Event{}
	}
	writeJSON(w, events)
}

func (h *routerHandlers) handleGetEventStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetEventLogStats())
}

func (h *routerHandlers) handleFrame(w http.ResponseWriter, r *http.Request) {
	if h.preview == nil {
		writeError(w, "Preview not available", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := h.preview.RenderPNG(&buf, h.engine.GetSnapshot()); err != nil {
		log.Printf("❌ Preview render failed: %v", err)
		writeError(w, "Render failed", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeError(w, "Command queue not available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, h.queue.Stats())
}

// Helper functions (package-level for reuse)

// requestSource names the client for per-source rate limits and event logs.
func requestSource(r *http.Request) string {
	return "http:" + GetClientIP(r)
}

// commandStatus maps command layer errors to HTTP status codes.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, command.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, command.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, command.ErrEmptyCommand),
		errors.Is(err, command.ErrUnknownCommand),
		errors.Is(err, command.ErrInvalidArgs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a bounded JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
