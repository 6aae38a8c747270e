package domain

// User represents a registered account. The record is created on
// registration and never mutated afterwards.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
}
