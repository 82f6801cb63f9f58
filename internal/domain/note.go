package domain

import "time"

// Note is an append-only case annotation. A note carrying a follow-up date may
// advance the case to follow_up_required but never regresses a more advanced
// status.
type Note struct {
	ID           string
	CaseID       string
	AuthorID     int64
	Content      string
	NotedAt      time.Time
	FollowUpDate *time.Time
	CreatedAt    time.Time
}
