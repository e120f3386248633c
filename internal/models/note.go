// Package models defines the data records persisted by gophnotes.
package models

// Note is a single note record owned by one user's namespace.
//
// The JSON field names are the on-disk serialization contract: collections
// are stored as a JSON array of these records under "notes:<username>".
// ImageURI and Category are optional and stay absent in the serialized form
// when empty. Timestamps are Unix milliseconds.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ImageURI  string `json:"imageUri,omitempty"`
	Category  string `json:"category,omitempty"`
	IsPinned  bool   `json:"isPinned"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}
