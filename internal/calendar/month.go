package calendar

import "time"

// MonthDay is one day in the journal's calendar view.
type MonthDay struct {
	Date    time.Time `json:"date"`
	Logged  bool      `json:"logged"`
	IsToday bool      `json:"is_today"`
}

type MonthResponse struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Days  []*MonthDay `json:"days"`
}
