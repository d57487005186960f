package model

import "time"

// Stock represents a position in a single ticker owned by one user.
// Its transactions are owned exclusively by the stock and are removed with it.
type Stock struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Ticker    string    `json:"ticker"`
	CreatedAt time.Time `json:"createdAt"`
}
