package entry

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/modules/processing/ai"
	"github.com/mx-space/journal/internal/pkg/pagination"
	"github.com/mx-space/journal/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts /entry. analysisMW guards the routes that call the
// model (create and update).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, analysisMW ...gin.HandlerFunc) {
	g := rg.Group("/entry", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", withMiddleware(analysisMW, h.create)...)
	g.PATCH("/:id", withMiddleware(analysisMW, h.update)...)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	entries, pag, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, entries, pag)
}

func (h *Handler) get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, e)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}
	content := DefaultContent
	if dto.Content != nil {
		content = *dto.Content
	}

	e, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), content)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, e)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	e, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), *dto.Updates.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, e)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, deletedResponse{ID: id})
}

func withMiddleware(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), h)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		response.NotFoundMsg(c, "entry not found")
	case errors.Is(err, ai.ErrModelBusy):
		_ = c.Error(err)
		response.ServiceUnavailable(c, "analysis is busy, try again shortly")
	default:
		response.InternalError(c, err)
	}
}
