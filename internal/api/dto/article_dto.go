package dto

import "github.com/spec-kit/market-desk/internal/domain"

// ArticleListResponse lists published articles.
type ArticleListResponse struct {
	Success  bool             `json:"success"`
	Articles []domain.Article `json:"articles"`
}

// ArticleSearchResponse carries search hits with snippets.
type ArticleSearchResponse struct {
	Success bool             `json:"success"`
	Query   string           `json:"query"`
	Results []domain.Article `json:"results"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}
