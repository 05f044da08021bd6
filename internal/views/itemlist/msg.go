package itemlist

import "github.com/mercari-build-training/simple-mercari/tui/internal/backend"

// LoadCompletedMsg reports that a fetch finished, successfully or not.
type LoadCompletedMsg struct{}

// ItemsLoadedMsg carries the result of a list or search fetch.
type ItemsLoadedMsg struct {
	Keyword string
	Items   []backend.Item
	Err     error

	seq int
}

// DetailLoadedMsg carries the result of `GET /items/{id}`.
type DetailLoadedMsg struct {
	ID     int
	Detail backend.ItemDetail
	Err    error
}
