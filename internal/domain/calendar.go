package domain

import "time"

// CalendarEvent is a read-only projection row consumed by calendar and export
// collaborators. The engine never mutates a case through this view.
type CalendarEvent struct {
	Type       string    `json:"type"` // promised_payment, follow_up, escalation
	CaseID     string    `json:"case_id"`
	CaseNumber string    `json:"case_number"`
	Date       time.Time `json:"date"`
}
