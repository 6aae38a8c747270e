package transport

// TaskCreateRequest is the body of POST /tasks. Content is a pointer
// so a missing field can be told apart from an empty string.
type TaskCreateRequest struct {
	Content *string `json:"content"`
}

// TaskUpdateRequest is the body of PUT /tasks/{id}. Only the fields
// actually present in the payload are applied.
type TaskUpdateRequest struct {
	Content   *string `json:"content"`
	Completed *bool   `json:"completed"`
}
