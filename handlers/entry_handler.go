package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"songBirdAPI/internal/streak"
	"songBirdAPI/internal/types/entry"
	"songBirdAPI/middleware"
	"songBirdAPI/services"
)

type EntryHandler struct {
	entryService  *services.EntryService
	streakService *services.StreakService
}

func NewEntryHandler(entryService *services.EntryService, streakService *services.StreakService) *EntryHandler {
	return &EntryHandler{
		entryService:  entryService,
		streakService: streakService,
	}
}

type createEntryResponse struct {
	Entry  *entry.Entry   `json:"entry"`
	Streak *streak.Result `json:"streak"`
}

// CreateEntry logs a song for a day and immediately advances the streak, so
// the client gets the new streak state in one round trip.
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req entry.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.entryService.CreateEntry(ctx, clerkID, &req)
	if err != nil {
		log.Printf("CreateEntry Handler: Service error: %v", err)
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.streakService.AdvanceStreak(ctx, clerkID, time.Now())
	if err != nil {
		// The entry is saved; a failed streak update must not claim success
		// for the whole call either.
		log.Printf("CreateEntry Handler: streak update failed: %v", err)
		respondWithError(w, http.StatusServiceUnavailable, "Entry saved but streak update failed, retry later")
		return
	}

	respondWithJSON(w, http.StatusCreated, createEntryResponse{Entry: e, Streak: result})
}

func (h *EntryHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.entryService.ListEntries(ctx, clerkID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = time.Month(parsed)
	}

	resp, err := h.entryService.GetCalendarMonth(ctx, clerkID, year, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
