package backend

import (
	"errors"
	"fmt"
)

// Item represents an entry from `GET /items`.
type Item struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageName string `json:"image_name"`
}

// ItemDetail represents the output of `GET /items/{id}` and the entries of `GET /search`.
type ItemDetail struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageName string `json:"image_name"`
}

// NewItem is the payload of a listing submission.
type NewItem struct {
	Name     string
	Category string
	// ImagePath is a local .jpg file. Empty means the server's default image.
	ImagePath string
}

type itemsResponse struct {
	Items []Item `json:"items"`
}

type searchResponse struct {
	Items []ItemDetail `json:"items"`
}

type helloResponse struct {
	Message string `json:"message"`
}

// ErrNotFound matches an APIError with status 404.
var ErrNotFound = errors.New("not found")

// ErrEmptyImage is returned by AddItem for a zero-byte image file.
var ErrEmptyImage = errors.New("image data is empty")

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrNotFound and the status is 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// Categories returns the distinct categories of items in first-seen order.
func Categories(items []Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}
