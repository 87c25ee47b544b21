package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-desk/internal/api/dto"
	"github.com/spec-kit/market-desk/internal/service"
)

// ArticlesHandler lists and searches the static articles.
type ArticlesHandler struct {
	service *service.ArticleService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articleService *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{service: articleService}
}

// List GET /api/articles.
func (h *ArticlesHandler) List(c *fiber.Ctx) error {
	articles, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.ArticleListResponse{Success: true, Articles: articles})
}

// Search GET /api/articles/search?q=.
func (h *ArticlesHandler) Search(c *fiber.Ctx) error {
	query, results, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ArticleSearchResponse{Success: true, Query: query, Results: results})
}
