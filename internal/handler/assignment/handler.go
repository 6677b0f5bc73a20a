package assignment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/rota-api/internal/handler"
	"github.com/jwalitptl/rota-api/internal/model"
	assignmentService "github.com/jwalitptl/rota-api/internal/service/assignment"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

type Handler struct {
	service *assignmentService.Service
}

func NewHandler(service *assignmentService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	deptLocs := r.Group("/department-locations")
	{
		deptLocs.POST("", h.CreateDepartmentLocation)
		deptLocs.GET("", h.ListDepartmentLocations)
		deptLocs.GET("/:id", h.GetDepartmentLocation)
		deptLocs.DELETE("/:id", h.DeleteDepartmentLocation)
	}

	teamLocs := r.Group("/team-locations")
	{
		teamLocs.POST("", h.CreateTeamLocation)
		teamLocs.GET("", h.ListTeamLocations)
		teamLocs.GET("/:id", h.GetTeamLocation)
		teamLocs.DELETE("/:id", h.DeleteTeamLocation)
	}

	userTeams := r.Group("/user-teams")
	{
		userTeams.POST("", h.CreateUserTeam)
		userTeams.GET("", h.ListUserTeams)
		userTeams.GET("/:id", h.GetUserTeam)
		userTeams.PATCH("/:id", h.UpdateUserTeam)
		userTeams.DELETE("/:id", h.DeleteUserTeam)
	}

	deptModules := r.Group("/department-modules")
	{
		deptModules.POST("", h.CreateDepartmentModule)
		deptModules.GET("", h.ListDepartmentModules)
		deptModules.GET("/:id", h.GetDepartmentModule)
		deptModules.DELETE("/:id", h.DeleteDepartmentModule)
	}
}

func (h *Handler) CreateDepartmentLocation(c *gin.Context) {
	var req model.CreateDepartmentLocationRequest
	if !handler.Bind(c, &req) {
		return
	}
	dl, err := h.service.CreateDepartmentLocation(c.Request.Context(), &req, handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, dl)
}

// ListDepartmentLocations requires department_id or location_id.
func (h *Handler) ListDepartmentLocations(c *gin.Context) {
	var (
		list []model.DepartmentLocation
		err  error
	)
	switch {
	case c.Query("department_id") != "":
		list, err = h.service.ListDepartmentLocationsByDepartment(c.Request.Context(), c.Query("department_id"))
	case c.Query("location_id") != "":
		list, err = h.service.ListDepartmentLocationsByLocation(c.Request.Context(), c.Query("location_id"))
	default:
		err = apperrors.NewBadRequest("department_id or location_id is required", nil)
	}
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, list)
}

func (h *Handler) GetDepartmentLocation(c *gin.Context) {
	dl, err := h.service.GetDepartmentLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, dl)
}

// DeleteDepartmentLocation also removes the team-location links that depend
// on the link. The response lists what was removed.
func (h *Handler) DeleteDepartmentLocation(c *gin.Context) {
	res, err := h.service.DeleteDepartmentLocation(c.Request.Context(), c.Param("id"), handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, res)
}

func (h *Handler) CreateTeamLocation(c *gin.Context) {
	var req model.CreateTeamLocationRequest
	if !handler.Bind(c, &req) {
		return
	}
	tl, err := h.service.CreateTeamLocation(c.Request.Context(), &req, handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, tl)
}

func (h *Handler) ListTeamLocations(c *gin.Context) {
	list, err := h.service.ListTeamLocations(c.Request.Context(), assignmentService.TeamLocationFilter{
		TeamID:     c.Query("team_id"),
		LocationID: c.Query("location_id"),
		DepID:      c.Query("dep_id"),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, list)
}

func (h *Handler) GetTeamLocation(c *gin.Context) {
	tl, err := h.service.GetTeamLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, tl)
}

func (h *Handler) DeleteTeamLocation(c *gin.Context) {
	if err := h.service.DeleteTeamLocation(c.Request.Context(), c.Param("id"), handler.Actor(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, nil)
}

func (h *Handler) CreateUserTeam(c *gin.Context) {
	var req model.CreateUserTeamRequest
	if !handler.Bind(c, &req) {
		return
	}
	ut, err := h.service.CreateUserTeam(c.Request.Context(), &req, handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, ut)
}

func (h *Handler) ListUserTeams(c *gin.Context) {
	list, err := h.service.ListUserTeams(c.Request.Context(), assignmentService.UserTeamFilter{
		UserID: c.Query("user_id"),
		TeamID: c.Query("team_id"),
		DepID:  c.Query("dep_id"),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, list)
}

func (h *Handler) GetUserTeam(c *gin.Context) {
	ut, err := h.service.GetUserTeam(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, ut)
}

func (h *Handler) UpdateUserTeam(c *gin.Context) {
	var req model.UpdateUserTeamRequest
	if !handler.Bind(c, &req) {
		return
	}
	ut, err := h.service.UpdateUserTeam(c.Request.Context(), c.Param("id"), &req, handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, ut)
}

func (h *Handler) DeleteUserTeam(c *gin.Context) {
	if err := h.service.DeleteUserTeam(c.Request.Context(), c.Param("id"), handler.Actor(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, nil)
}

func (h *Handler) CreateDepartmentModule(c *gin.Context) {
	var req model.CreateDepartmentModuleRequest
	if !handler.Bind(c, &req) {
		return
	}
	dm, err := h.service.CreateDepartmentModule(c.Request.Context(), &req, handler.Actor(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, dm)
}

func (h *Handler) ListDepartmentModules(c *gin.Context) {
	list, err := h.service.ListDepartmentModules(c.Request.Context(), assignmentService.DepartmentModuleFilter{
		DepID:    c.Query("dep_id"),
		ModuleID: c.Query("module_id"),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, list)
}

func (h *Handler) GetDepartmentModule(c *gin.Context) {
	dm, err := h.service.GetDepartmentModule(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, dm)
}

func (h *Handler) DeleteDepartmentModule(c *gin.Context) {
	if err := h.service.DeleteDepartmentModule(c.Request.Context(), c.Param("id"), handler.Actor(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, nil)
}
