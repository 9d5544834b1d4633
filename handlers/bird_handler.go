package handlers

import (
	"context"
	"net/http"
	"time"

	"songBirdAPI/middleware"
	"songBirdAPI/services"
)

type BirdHandler struct {
	birdService *services.BirdService
}

func NewBirdHandler(birdService *services.BirdService) *BirdHandler {
	return &BirdHandler{
		birdService: birdService,
	}
}

func (h *BirdHandler) GetBirds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	birds, err := h.birdService.GetBirds(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, birds)
}
