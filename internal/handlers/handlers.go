// Package handlers is the presentation boundary: it decodes requests,
// enforces the input rules the core deliberately does not (required
// fields, option lists, limits), and renders service results as JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hobbycircles/hobby-circles/internal/db"
	svcErr "github.com/hobbycircles/hobby-circles/internal/errors"
	"github.com/hobbycircles/hobby-circles/internal/service/discovery"
)

const (
	defaultFeedSize = 5
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handler struct {
	svc *discovery.Service
	log *slog.Logger
}

func New(svc *discovery.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// --- request/response shapes ---

type registerRequest struct {
	Username  string   `json:"username"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Interests []string `json:"interests"`
	Bio       string   `json:"bio"`
}

type registerResponse struct {
	Message string `json:"message"`
}

type postActivityRequest struct {
	Username     string `json:"username"`
	ActivityType string `json:"activity_type"`
	Description  string `json:"description"`
	TimeSlot     string `json:"time_slot"`
	Location     string `json:"location"`
}

type postActivityResponse struct {
	ID uint64 `json:"id"`
}

type listUsersResponse struct {
	Users         []db.User `json:"users"`
	NextPageToken *string   `json:"next_page_token,omitempty"`
}

type matchesResponse struct {
	Matches []discovery.Match `json:"matches"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type feedResponse struct {
	Activities []db.Activity `json:"activities"`
}

type optionsResponse struct {
	ActivityTypes []string `json:"activity_types"`
	TimeSlots     []string `json:"time_slots"`
}

// --- handlers ---

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Options serves the enumerated lists the input widgets constrain
// themselves to. The board itself accepts arbitrary strings.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		ActivityTypes: db.ActivityTypes,
		TimeSlots:     db.TimeSlots,
	})
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}
	if req.Username == "" {
		writeError(w, svcErr.InvalidArgument("username is required"))
		return
	}

	msg, err := h.svc.Register(r.Context(), discovery.RegisterInput{
		Username:  req.Username,
		Lat:       req.Lat,
		Lon:       req.Lon,
		Interests: req.Interests,
		Bio:       req.Bio,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Message: msg})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	var pageToken *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		pageToken = &t
	}

	users, nextToken, err := h.svc.ListUsers(r.Context(), pageToken, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []db.User{}
	}

	writeJSON(w, http.StatusOK, listUsersResponse{Users: users, NextPageToken: nextToken})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.svc.GetUser(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) FindMatches(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	radiusKm := discovery.DefaultRadiusKm
	if v := r.URL.Query().Get("radius_km"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, svcErr.InvalidArgument("radius_km must be a number"))
			return
		}
		radiusKm = parsed
	}
	interest := r.URL.Query().Get("interest")

	matches, err := h.svc.FindMatches(r.Context(), username, radiusKm, interest)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, matchesResponse{Matches: matches})
}

func (h *Handler) CountMatches(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	radiusKm := discovery.DefaultRadiusKm
	if v := r.URL.Query().Get("radius_km"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, svcErr.InvalidArgument("radius_km must be a number"))
			return
		}
		radiusKm = parsed
	}
	interest := r.URL.Query().Get("interest")

	count, err := h.svc.CountMatches(r.Context(), username, radiusKm, interest)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) PostActivity(w http.ResponseWriter, r *http.Request) {
	var req postActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}
	if req.Username == "" {
		writeError(w, svcErr.InvalidArgument("username is required"))
		return
	}
	if req.Description == "" {
		writeError(w, svcErr.InvalidArgument("description is required"))
		return
	}

	id, err := h.svc.PostActivity(r.Context(), discovery.PostActivityInput{
		Username:     req.Username,
		ActivityType: req.ActivityType,
		Description:  req.Description,
		TimeSlot:     req.TimeSlot,
		Location:     req.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, postActivityResponse{ID: id})
}

func (h *Handler) RecentActivities(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultFeedSize)
	if limit < 0 {
		limit = defaultFeedSize
	}

	activities, err := h.svc.RecentActivities(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if activities == nil {
		activities = []db.Activity{}
	}

	writeJSON(w, http.StatusOK, feedResponse{Activities: activities})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- helpers ---

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	mapped := svcErr.Map(err)

	msg := "internal error"
	var se *svcErr.StatusError
	if errors.As(mapped, &se) {
		msg = se.Message
	}

	writeJSON(w, svcErr.StatusOf(mapped), map[string]string{"error": msg})
}
