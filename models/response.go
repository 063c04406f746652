package models

// ErrorResponse is the body returned with every non-2xx status.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string      `json:"status"` // "healthy" or "degraded"
	Uptime  string      `json:"uptime"`
	Browser BrowserInfo `json:"browser"`
	Version string      `json:"version"`
}

// BrowserInfo reports the state of the shared browser session.
type BrowserInfo struct {
	Running    bool   `json:"running"`
	Generation uint64 `json:"generation"`
	OpenTabs   int    `json:"open_tabs"`
	MaxTabs    int    `json:"max_tabs,omitempty"`
	Restarts   uint64 `json:"restarts"`
}

// InvalidateResponse is the response for DELETE /imdb/cache/title/:imdbId.
type InvalidateResponse struct {
	Removed int `json:"removed"`
}
