package models

import "time"

// URL represents a shortened URL and its associated metadata.
type URL struct {
	// ID is the unique identifier for the shortened URL record.
	ID int64
	// ShortCode is the short code or key associated with the long URL.
	ShortCode string
	// LongURL is the original, full-length URL that the short code points to.
	LongURL string
	// ClickCount tracks the number of times the shortened URL has been resolved.
	ClickCount int64
	// CreatedAt is the timestamp indicating when the shortened URL was created.
	CreatedAt time.Time
}

// SystemStats holds usage counters aggregated across all shortened URLs.
type SystemStats struct {
	// TotalURLs is the number of shortened URLs currently stored.
	TotalURLs int64
	// TotalClicks is the sum of click counts across all shortened URLs.
	TotalClicks int64
	// AvgClicksPerURL is TotalClicks divided by TotalURLs, or 0 for an empty store.
	AvgClicksPerURL float64
}
