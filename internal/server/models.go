package server

import (
	"time"

	"social-dashboard-backend/internal/engagement"
)

// DatasetInfo describes the dataset currently on the board.
type DatasetInfo struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	LoadedAt   time.Time         `json:"loaded_at"`
	Rows       int               `json:"rows"`
	Columns    []string          `json:"columns"`
	Categories []string          `json:"categories"`
	Filter     engagement.Filter `json:"filter"`
}

// FilterRequest sets the active filter. An empty type means "all".
type FilterRequest struct {
	Type string `json:"type"`
}

// ProxyRequest is the body the dashboard page posts to /chat.
type ProxyRequest struct {
	InputValue string `json:"input_value"`
}

// ChatRequest is one message typed into the assistant widget.
type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

func datasetInfo(snap engagement.Snapshot) DatasetInfo {
	columns := snap.Dataset.Columns
	if columns == nil {
		columns = make([]string, 0)
	}
	return DatasetInfo{
		ID:         snap.Version,
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
		Rows:       snap.Dataset.Len(),
		Columns:    columns,
		Categories: engagement.Categories(snap.Dataset),
		Filter:     snap.Filter,
	}
}
