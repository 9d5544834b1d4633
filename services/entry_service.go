package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"songBirdAPI/internal/calendar"
	"songBirdAPI/internal/types/entry"
)

type EntryService struct {
	db        *pgxpool.Pool
	analytics *AnalyticsService
}

func NewEntryService(db *pgxpool.Pool, analytics *AnalyticsService) *EntryService {
	return &EntryService{db: db, analytics: analytics}
}

func (s *EntryService) CreateEntry(ctx context.Context, clerkID string, req *entry.CreateEntryRequest) (*entry.Entry, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if req.SongTitle == "" {
		return nil, fmt.Errorf("song_title is required")
	}

	entryDate := calendar.DayOf(time.Now())
	if req.EntryDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.EntryDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid entry_date %q: %w", req.EntryDate, err)
		}
		entryDate = parsed
	}

	e := &entry.Entry{}
	query := `
	INSERT INTO entries (id, user_id, entry_date, song_title, song_artist, song_id, album_art, note, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	RETURNING id, user_id, entry_date, song_title, song_artist, song_id, album_art, note, created_at, updated_at
	`

	err = s.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		userID,
		entryDate,
		req.SongTitle,
		req.SongArtist,
		req.SongID,
		req.AlbumArt,
		req.Note,
	).Scan(
		&e.ID,
		&e.UserID,
		&e.EntryDate,
		&e.SongTitle,
		&e.SongArtist,
		&e.SongID,
		&e.AlbumArt,
		&e.Note,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	if s.analytics != nil {
		s.analytics.Track(ctx, userID, EventEntryCreated, map[string]any{
			"entry_date": entryDate.Format("2006-01-02"),
			"has_note":   req.Note != nil,
		})
	}

	return e, nil
}

func (s *EntryService) ListEntries(ctx context.Context, clerkID string, limit int) ([]*entry.Entry, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
	SELECT id, user_id, entry_date, song_title, song_artist, song_id, album_art, note, created_at, updated_at
	FROM entries
	WHERE user_id = $1
	ORDER BY entry_date DESC, created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []*entry.Entry{}
	for rows.Next() {
		e := &entry.Entry{}
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.EntryDate,
			&e.SongTitle,
			&e.SongArtist,
			&e.SongID,
			&e.AlbumArt,
			&e.Note,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// HasSameDayEntry answers the streak engine's oracle question: does an entry
// exist whose logical date is the given day AND whose creation time also
// falls on that day. Backdated entries fail the second condition, which is
// what keeps them from retroactively extending a streak.
func (s *EntryService) HasSameDayEntry(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	dayStart := calendar.DayOf(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
	SELECT EXISTS(
		SELECT 1 FROM entries
		WHERE user_id = $1
		  AND entry_date >= $2 AND entry_date < $3
		  AND created_at >= $2 AND created_at < $3
	)
	`

	var exists bool
	if err := s.db.QueryRow(ctx, query, userID, dayStart, dayEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check same-day entry: %w", err)
	}
	return exists, nil
}

// SameDayEntryDays returns the distinct calendar days with a same-day entry,
// most recent first. Feeds the fresh streak recompute.
func (s *EntryService) SameDayEntryDays(ctx context.Context, userID uuid.UUID, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 365
	}

	query := `
	SELECT DISTINCT (entry_date AT TIME ZONE 'UTC')::date AS day
	FROM entries
	WHERE user_id = $1
	  AND (entry_date AT TIME ZONE 'UTC')::date = (created_at AT TIME ZONE 'UTC')::date
	ORDER BY day DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load same-day history: %w", err)
	}
	defer rows.Close()

	days := []time.Time{}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan history day: %w", err)
		}
		days = append(days, day)
	}

	return days, rows.Err()
}

// GetCalendarMonth returns one month of days flagged with whether a same-day
// entry exists, for the journal's calendar view.
func (s *EntryService) GetCalendarMonth(ctx context.Context, clerkID string, year int, month time.Month) (*calendar.MonthResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	query := `
	SELECT DISTINCT (entry_date AT TIME ZONE 'UTC')::date AS day
	FROM entries
	WHERE user_id = $1 AND entry_date >= $2 AND entry_date < $3
	  AND (entry_date AT TIME ZONE 'UTC')::date = (created_at AT TIME ZONE 'UTC')::date
	`

	rows, err := s.db.Query(ctx, query, userID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar month: %w", err)
	}
	defer rows.Close()

	logged := map[string]bool{}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan calendar day: %w", err)
		}
		logged[day.Format("2006-01-02")] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	today := calendar.DayOf(time.Now())
	resp := &calendar.MonthResponse{Year: year, Month: int(month)}
	for d := monthStart; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		resp.Days = append(resp.Days, &calendar.MonthDay{
			Date:    d,
			Logged:  logged[d.Format("2006-01-02")],
			IsToday: d.Equal(today),
		})
	}

	return resp, nil
}
