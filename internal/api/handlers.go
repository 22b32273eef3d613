package api

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"hafla-tracker/internal/route"
	"hafla-tracker/internal/sim"
)

// Tracker is the part of *sim.Tracker the API reads from.
type Tracker interface {
	Route() *route.Route
	Status() sim.Status
	Search(query string) (route.Waypoint, route.SearchTarget)
}

type Handler struct {
	Tracker Tracker
}

type routeResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Waypoints   []route.Waypoint `json:"waypoints"`
	Stops       []route.Stop     `json:"stops"`
	Bounds      route.Bounds     `json:"bounds"`
	TotalLength float64          `json:"totalLength"`
}

type positionResponse struct {
	Progress float64 `json:"progress"`
	route.Position
}

type searchResponse struct {
	Query    string             `json:"query"`
	Found    bool               `json:"found"`
	Target   route.SearchTarget `json:"target"`
	Waypoint *route.Waypoint    `json:"waypoint,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Route(w http.ResponseWriter, _ *http.Request) {
	r := h.Tracker.Route()
	writeJSON(w, http.StatusOK, routeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Waypoints:   r.Waypoints(),
		Stops:       r.Stops,
		Bounds:      r.Bounds(),
		TotalLength: r.TotalLength(),
	})
}

func (h *Handler) Bus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Tracker.Status())
}

// Position answers a stateless progress -> coordinate query.
func (h *Handler) Position(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("progress"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "progress is required")
		return
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		writeError(w, http.StatusBadRequest, "progress must be a number")
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{
		Progress: p,
		Position: h.Tracker.Route().PositionAt(p),
	})
}

// Search resolves a location query. A miss is a normal 200 with found=false.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	wp, target := h.Tracker.Search(q)
	resp := searchResponse{Query: q, Target: target}
	if target != route.TargetNone {
		resp.Found = true
		resp.Waypoint = &wp
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
