package model

import "time"

type Status string

const (
	StatusNew  Status = "New"
	StatusDone Status = "Done"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusDone:
		return true
	}
	return false
}

// Item is a todo. ID is assigned by the store on insert and never changes.
type Item struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	FilePath    *string    `json:"filePath,omitempty"`
	TaskNumber  *int64     `json:"taskNumber,omitempty"`
}

// Completed reports whether the item has been marked done.
func (i Item) Completed() bool {
	return i.Status == StatusDone
}

// NewItem returns an unsaved item in the New state with both timestamps set to now.
func NewItem(title, description string, filePath *string, taskNumber *int64, now time.Time) Item {
	now = now.UTC()
	return Item{
		Title:       title,
		Description: description,
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
		FilePath:    filePath,
		TaskNumber:  taskNumber,
	}
}

// Rule is a free-form instruction loaded from a single file.
type Rule struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	FilePath    *string   `json:"filePath,omitempty"`
}

// Ptr returns a pointer to v. Handy for the optional Item fields.
func Ptr[T any](v T) *T {
	return &v
}
