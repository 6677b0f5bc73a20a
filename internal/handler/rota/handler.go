package rota

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/rota-api/internal/handler"
	"github.com/jwalitptl/rota-api/internal/model"
	rotaService "github.com/jwalitptl/rota-api/internal/service/rota"
)

type RotaServicer interface {
	View(ctx context.Context, teamID, weekID string) (*rotaService.WeekView, error)
	ListAssignments(ctx context.Context, f rotaService.AssignmentFilter) ([]model.RotaAssignment, error)
	AddAssignment(ctx context.Context, teamID, weekID string, req *model.CreateRotaAssignmentRequest, actor string) (*model.RotaAssignment, error)
	RemoveAssignment(ctx context.Context, id, actor string) error
	SetStatus(ctx context.Context, teamID, weekID string, status model.WeekStatusValue, actor string) (*model.WeekStatus, error)
}

// weekPath is the /teams/:id/rota/:weekId prefix.
type weekPath struct {
	TeamID string `uri:"id" binding:"required"`
	WeekID string `uri:"weekId" binding:"required,weekid"`
}

type Handler struct {
	service RotaServicer
}

func NewHandler(service RotaServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	week := r.Group("/teams/:id/rota/:weekId")
	{
		week.GET("", h.GetWeek)
		week.POST("/assignments", h.AddAssignment)
		week.PUT("/status", h.SetStatus)
	}
	r.GET("/rota-assignments", h.ListAssignments)
	r.DELETE("/rota-assignments/:id", h.RemoveAssignment)
}

// GetWeek returns the resolved schedule and its rendered rows.
func (h *Handler) GetWeek(c *gin.Context) {
	var p weekPath
	if !handler.BindURI(c, &p) {
		return
	}
	view, err := h.service.View(c.Request.Context(), p.TeamID, p.WeekID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, view)
}

func (h *Handler) AddAssignment(c *gin.Context) {
	var p weekPath
	if !handler.BindURI(c, &p) {
		return
	}
	var req model.CreateRotaAssignmentRequest
	if !handler.Bind(c, &req) {
		return
	}
	a, err := h.service.AddAssignment(c.Request.Context(), p.TeamID, p.WeekID, &req, handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, a)
}

// ListAssignments returns a team's or a user's rota history across weeks.
func (h *Handler) ListAssignments(c *gin.Context) {
	list, err := h.service.ListAssignments(c.Request.Context(), rotaService.AssignmentFilter{
		TeamID: c.Query("team_id"),
		UserID: c.Query("user_id"),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, list)
}

func (h *Handler) RemoveAssignment(c *gin.Context) {
	if err := h.service.RemoveAssignment(c.Request.Context(), c.Param("id"), handler.Actor(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, nil)
}

func (h *Handler) SetStatus(c *gin.Context) {
	var p weekPath
	if !handler.BindURI(c, &p) {
		return
	}
	var req model.SetWeekStatusRequest
	if !handler.Bind(c, &req) {
		return
	}
	ws, err := h.service.SetStatus(c.Request.Context(), p.TeamID, p.WeekID, req.Status, handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, ws)
}
