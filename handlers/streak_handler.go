package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"songBirdAPI/internal/streak"
	"songBirdAPI/middleware"
	"songBirdAPI/services"
)

type StreakHandler struct {
	streakService *services.StreakService
}

func NewStreakHandler(streakService *services.StreakService) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
	}
}

// GetStreak returns the current streak state without mutating it.
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.streakService.GetStatus(ctx, clerkID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrEntryOracleUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "Entry lookup unavailable, retry later")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// RestoreStreak is the manual once-per-30-days break recovery.
func (h *StreakHandler) RestoreStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	err := h.streakService.RestoreStreak(ctx, clerkID, time.Now())
	if err != nil {
		var notEligible *streak.RestoreNotEligibleError
		if errors.As(err, &notEligible) {
			respondWithJSON(w, http.StatusConflict, map[string]any{
				"error":             "You can only restore once per month",
				"remaining_seconds": int(notEligible.Remaining.Seconds()),
			})
			return
		}
		log.Printf("RestoreStreak Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to restore streak")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Streak restored"})
}

// RecomputeStreak runs the ground-truth recompute and reports drift against
// the incremental state.
func (h *StreakHandler) RecomputeStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.streakService.Recompute(ctx, clerkID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrEntryOracleUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "Entry lookup unavailable, retry later")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
