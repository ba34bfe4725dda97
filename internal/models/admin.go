package models

// CollectionStats counts documents in one collection for the dashboard.
type CollectionStats struct {
	Total       int `json:"total"`
	Highlighted int `json:"highlighted"`
	Published   int `json:"published"`
}

// MessageStats counts contact messages.
type MessageStats struct {
	Total int `json:"total"`
	New   int `json:"new"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Portfolio    CollectionStats `json:"portfolio"`
	Services     CollectionStats `json:"services"`
	Blog         CollectionStats `json:"blog"`
	Testimonials CollectionStats `json:"testimonials"`
	Messages     MessageStats    `json:"messages"`
}

// Recent holds the newest documents of each collection.
type Recent struct {
	Portfolio    []Summary `json:"portfolio"`
	Services     []Summary `json:"services"`
	Blog         []Summary `json:"blog"`
	Testimonials []Summary `json:"testimonials"`
	Messages     []Summary `json:"messages"`
}

// ScoredItem is a portfolio item ranked by engagement score.
type ScoredItem struct {
	Summary
	Views int `json:"views"`
	Likes int `json:"likes"`
	Score int `json:"engagement_score"`
}

// Analytics aggregates engagement across collections.
type Analytics struct {
	Engagement       map[Collection]Engagement `json:"engagement"`
	TopPortfolio     []ScoredItem              `json:"top_portfolio"`
	MessagesByStatus map[MessageStatus]int     `json:"messages_by_status"`
}
