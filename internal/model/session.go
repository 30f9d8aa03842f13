package model

import "time"

// Session is one authenticated login and the unit of revocation. A refresh
// token only works while its session exists and is valid.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Valid     bool      `json:"valid"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
