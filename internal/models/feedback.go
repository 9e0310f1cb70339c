// ABOUTME: Usage tracking records for the feedback subsystem
// ABOUTME: Defines Feedback entries and aggregate Stats
package models

import "time"

// Feedback is a user's rating of one answer. Rating is +1 or -1; Comment is
// optional. The feedback list only grows.
type Feedback struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarizes usage counters. TotalQuestions only ever increases.
type Stats struct {
	TotalQuestions   int `json:"total_questions"`
	TotalFeedback    int `json:"total_feedback"`
	PositiveFeedback int `json:"positive_feedback"`
	NegativeFeedback int `json:"negative_feedback"`
}
