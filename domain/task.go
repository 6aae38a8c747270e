package domain

// Task represents a single to-do item owned by exactly one user.
// The owner reference stays server-side; responses expose id, content
// and the completed flag only.
type Task struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"-"`
}
