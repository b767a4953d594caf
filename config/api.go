package config

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIServer exposes the effective configuration, with credentials masked,
// for operators.
type APIServer struct {
	config Config
}

// NewAPIServer creates a config API server.
func NewAPIServer(cfg Config) *APIServer {
	return &APIServer{config: cfg.Redacted()}
}

// RegisterRoutes adds GET /config to group, which is expected to be
// mounted at /api/v1/meta.
func (s *APIServer) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/config", s.HandleGetConfig)
}

// HandleGetConfig handles GET /api/v1/meta/config.
func (s *APIServer) HandleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.config)
}
