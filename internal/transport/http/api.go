package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"n5-drill-service/internal/app"
	"n5-drill-service/internal/auth"
	"n5-drill-service/internal/domain"
)

// APIHandler serves the profile and ranking endpoints.
type APIHandler struct {
	profiles *app.ProfileService
	ranking  *app.RankingAggregator
	logger   *zap.Logger
}

func NewAPIHandler(profiles *app.ProfileService, ranking *app.RankingAggregator, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{profiles: profiles, ranking: ranking, logger: logger}
}

type profileUpdateRequest struct {
	Name      *string `json:"nombre"`
	AvatarURL *string `json:"avatar_url"`
}

type rankingResponse struct {
	Entries   []domain.RankingEntry `json:"entries"`
	Available bool                  `json:"available"`
}

// GetProfile handles GET /api/me.
func (h *APIHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Profile(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/me.
func (h *APIHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Code: "invalid_payload", Message: "bad json"})
		return
	}
	profile, err := h.profiles.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), req.Name, req.AvatarURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// WeeklyRanking handles GET /api/ranking/weekly. Aggregation failures degrade to
// an empty, unavailable ranking instead of an error status.
func (h *APIHandler) WeeklyRanking(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ranking.Weekly(r.Context())
	if err != nil {
		h.logger.Warn("weekly ranking unavailable", zap.Error(err))
		writeJSON(w, http.StatusOK, rankingResponse{Entries: []domain.RankingEntry{}, Available: false})
		return
	}
	writeJSON(w, http.StatusOK, rankingResponse{Entries: entries, Available: true})
}

func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Code: "user_not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidProfile):
		writeJSON(w, http.StatusBadRequest, errorPayload{Code: "invalid_profile", Message: err.Error()})
	default:
		h.logger.Error("api request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorPayload{Code: "internal", Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
