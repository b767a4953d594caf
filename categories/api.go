package categories

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIServer exposes category management over HTTP.
type APIServer struct {
	store *Store
}

// NewAPIServer creates a category API server.
func NewAPIServer(store *Store) *APIServer {
	return &APIServer{store: store}
}

// RegisterRoutes adds the category routes to group, which is expected to
// be mounted at /api/v1/meta.
func (s *APIServer) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/categories", s.HandleList)
	group.GET("/categories/:name", s.HandleGet)
	group.PUT("/categories/:name", s.HandleUpsert)
	group.DELETE("/categories/:name", s.HandleDelete)
}

// ListResponse represents the response for GET /api/v1/meta/categories.
type ListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

// UpsertRequest represents the request for PUT
// /api/v1/meta/categories/{name}.
type UpsertRequest struct {
	TitleQuery string `json:"title_query" binding:"required"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// handleError maps domain errors to HTTP responses.
func (s *APIServer) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

// HandleList handles GET /api/v1/meta/categories.
func (s *APIServer) HandleList(c *gin.Context) {
	categories, err := s.store.List()
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// HandleGet handles GET /api/v1/meta/categories/{name}.
func (s *APIServer) HandleGet(c *gin.Context) {
	category, err := s.store.Get(c.Param("name"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// HandleUpsert handles PUT /api/v1/meta/categories/{name}.
func (s *APIServer) HandleUpsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error()))
		return
	}

	category, err := s.store.Upsert(c.Param("name"), req.TitleQuery)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// HandleDelete handles DELETE /api/v1/meta/categories/{name}.
func (s *APIServer) HandleDelete(c *gin.Context) {
	if err := s.store.Delete(c.Param("name")); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
