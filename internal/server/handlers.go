package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/xonecas/parley/internal/constants"
	"github.com/xonecas/parley/internal/remote"
)

// Handler serves the chat endpoints from a Hub.
type Handler struct {
	hub     *Hub
	logger  zerolog.Logger
	started time.Time
}

// NewHandler creates a handler backed by hub.
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger, started: time.Now()}
}

type sendRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	LastID int64  `json:"lastId"`
	Users  int    `json:"users"`
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn().Err(err).Msg("failed to encode response")
	}
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, errorResponse{Error: message})
}

// Join handles GET|POST /join?name=
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}

	lastID := h.hub.Join(name)
	h.logger.Info().Str("name", name).Int64("last_id", lastID).Msg("member joined")
	h.JSON(w, http.StatusOK, remote.JoinResult{LastID: lastID})
}

// Leave handles GET|POST /leave?name=
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}

	h.hub.Leave(name)
	h.logger.Info().Str("name", name).Msg("member left")
	w.WriteHeader(http.StatusOK)
}

// Messages handles GET /messages?lastId=
// A missing or malformed lastId is treated as 0.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	lastID, err := strconv.ParseInt(r.URL.Query().Get("lastId"), 10, 64)
	if err != nil || lastID < 0 {
		lastID = 0
	}
	h.JSON(w, http.StatusOK, h.hub.Since(lastID))
}

// Users handles GET /users
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.hub.Users())
}

// Send handles POST /send
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(constants.MaxContentBytes)*2)

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid message")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		h.Error(w, http.StatusBadRequest, "content required")
		return
	}
	if len(req.Content) > constants.MaxContentBytes {
		h.Error(w, http.StatusBadRequest, "content too long")
		return
	}

	msg := h.hub.Send(name, req.Content)
	h.logger.Debug().Str("name", name).Int64("id", msg.ID).Msg("message posted")
	w.WriteHeader(http.StatusOK)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Uptime: time.Since(h.started).Round(time.Second).String(),
		LastID: h.hub.LastID(),
		Users:  len(h.hub.Users()),
	})
}

func (h *Handler) nameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := sanitizeName(r.URL.Query().Get("name"))
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name required")
		return "", false
	}
	return name, true
}

// sanitizeName trims the name, strips control characters and caps its length.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if runes := []rune(name); len(runes) > constants.MaxNameLength {
		name = string(runes[:constants.MaxNameLength])
	}

	return name
}
