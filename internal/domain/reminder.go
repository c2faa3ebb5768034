package domain

import "time"

// DateLayout is the calendar-day format reminders are keyed by.
const DateLayout = "2006-01-02"

// Reminder is a date-tagged note kept on the client only. It never reaches
// the application store.
type Reminder struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}
