package user

import (
	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the account routes. Both require authMW, which has
// already resolved (and if needed created) the caller.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/me", authMW, h.me)
	rg.POST("/users/sync", authMW, h.sync)
}

func (h *Handler) me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, toResponse(u))
}

// sync is the explicit new-user flow of the web client.
func (h *Handler) sync(c *gin.Context) {
	u, err := h.svc.Resolve(c.Request.Context(), c.GetString(middleware.ContextKeyExternalID), c.GetString(middleware.ContextKeyEmail))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(u))
}
