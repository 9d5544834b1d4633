package entry

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one journal entry: the song a user picked for a calendar day.
// EntryDate is the logical day the entry is about; CreatedAt is when it was
// actually logged. The streak engine only counts entries where both fall on
// the same UTC day.
type Entry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	EntryDate  time.Time `json:"entry_date" db:"entry_date"`
	SongTitle  string    `json:"song_title" db:"song_title"`
	SongArtist string    `json:"song_artist" db:"song_artist"`
	SongID     *string   `json:"song_id,omitempty" db:"song_id"`
	AlbumArt   *string   `json:"album_art,omitempty" db:"album_art"`
	Note       *string   `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type CreateEntryRequest struct {
	EntryDate  string  `json:"entry_date"` // YYYY-MM-DD, defaults to today
	SongTitle  string  `json:"song_title"`
	SongArtist string  `json:"song_artist"`
	SongID     *string `json:"song_id,omitempty"`
	AlbumArt   *string `json:"album_art,omitempty"`
	Note       *string `json:"note,omitempty"`
}
