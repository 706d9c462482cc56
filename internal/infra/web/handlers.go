package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	red "diet-planner-api/internal/infra/redis"
	"diet-planner-api/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleGenerate queues diet generation for the caller and returns the
// job id immediately; it never waits on the generation itself.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(r)

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, red.SubmitKey(uid), 1, s.rateEvery)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, letting request through")
		} else if !ok {
			http.Error(w, domain.ErrRateLimited.Error(), http.StatusTooManyRequests)
			return
		}
	}

	jobID, err := s.dietUC.RequestPlan(ctx, uid)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoProfile):
			http.Error(w, "Profile not found. Please complete profile first.", http.StatusBadRequest)
		case errors.Is(err, domain.ErrQueueUnavailable):
			http.Error(w, "Failed to queue diet generation", http.StatusServiceUnavailable)
		default:
			s.log.Error().Err(err).Msg("generate request failed")
			http.Error(w, "Failed to queue diet generation", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, struct {
		JobID   string `json:"jobId"`
		Message string `json:"message"`
	}{JobID: jobID, Message: "Diet generation started"})
}

type statusResponse struct {
	Status string      `json:"status"`
	Result *model.Plan `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		http.Error(w, "Missing jobId", http.StatusBadRequest)
		return
	}

	res, err := s.dietUC.Status(r.Context(), jobID, userID(r))
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("status query failed")
		http.Error(w, "Failed to get job status", http.StatusInternalServerError)
		return
	}

	switch res.State {
	case usecase.StatusPending:
		writeJSON(w, http.StatusOK, statusResponse{Status: "pending"})
	case usecase.StatusCompleted:
		writeJSON(w, http.StatusOK, statusResponse{Status: "completed", Result: res.Plan})
	case usecase.StatusFailed:
		writeJSON(w, http.StatusOK, statusResponse{Status: "failed", Error: res.Reason})
	default:
		// Job expired and no plan was ever persisted for this user.
		writeJSON(w, http.StatusOK, statusResponse{Status: "completed", Result: nil})
	}
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := s.dietUC.History(r.Context(), userID(r), offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("plan history failed")
		http.Error(w, "Failed to list plans", http.StatusInternalServerError)
		return
	}

	type planEntry struct {
		ID        string      `json:"id"`
		Plan      *model.Plan `json:"plan"`
		CreatedAt string      `json:"createdAt"`
	}
	out := make([]planEntry, 0, len(recs))
	for _, rec := range recs {
		plan, err := rec.Plan()
		if err != nil {
			s.log.Warn().Err(err).Str("record_id", rec.ID).Msg("skipping unreadable plan record")
			continue
		}
		out = append(out, planEntry{ID: rec.ID, Plan: plan, CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00")})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []planEntry `json:"data"`
	}{Data: out})
}

type profileRequest struct {
	WeightKg     float64 `json:"weightKg"`
	HeightCm     float64 `json:"heightCm"`
	Region       string  `json:"region"`
	EatingHabits string  `json:"eatingHabits"`
	Goal         string  `json:"goal"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profileUC.Get(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("profile fetch failed")
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p := &model.Profile{
		UserID:       userID(r),
		WeightKg:     req.WeightKg,
		HeightCm:     req.HeightCm,
		Region:       req.Region,
		EatingHabits: req.EatingHabits,
		Goal:         req.Goal,
	}
	if err := s.profileUC.Upsert(r.Context(), p); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Msg("profile save failed")
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
