package directory

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/rota-api/internal/handler"
	"github.com/jwalitptl/rota-api/internal/model"
	directoryService "github.com/jwalitptl/rota-api/internal/service/directory"
)

type Handler struct {
	service *directoryService.Service
}

func NewHandler(service *directoryService.Service) *Handler {
	return &Handler{service: service}
}

// resource wires the five CRUD routes of one entity. C and U are the create
// and update request bodies.
type resource[E, C, U any] struct {
	create func(ctx context.Context, req *C, actor string) (*E, error)
	get    func(ctx context.Context, id string) (*E, error)
	list   func(c *gin.Context) ([]E, error)
	update func(ctx context.Context, id string, req *U, actor string) (*E, error)
	remove func(ctx context.Context, id, actor string) (interface{}, error)
}

func register[E, C, U any](r *gin.RouterGroup, path string, res resource[E, C, U]) {
	g := r.Group(path)
	{
		g.POST("", func(c *gin.Context) {
			var req C
			if !handler.Bind(c, &req) {
				return
			}
			out, err := res.create(c.Request.Context(), &req, handler.Actor(c))
			if err != nil {
				handler.Error(c, err)
				return
			}
			handler.Created(c, out)
		})
		g.GET("", func(c *gin.Context) {
			out, err := res.list(c)
			if err != nil {
				handler.Error(c, err)
				return
			}
			handler.OK(c, out)
		})
		g.GET("/:id", func(c *gin.Context) {
			out, err := res.get(c.Request.Context(), c.Param("id"))
			if err != nil {
				handler.Error(c, err)
				return
			}
			handler.OK(c, out)
		})
		g.PATCH("/:id", func(c *gin.Context) {
			var req U
			if !handler.Bind(c, &req) {
				return
			}
			out, err := res.update(c.Request.Context(), c.Param("id"), &req, handler.Actor(c))
			if err != nil {
				handler.Error(c, err)
				return
			}
			handler.OK(c, out)
		})
		g.DELETE("/:id", func(c *gin.Context) {
			out, err := res.remove(c.Request.Context(), c.Param("id"), handler.Actor(c))
			if err != nil {
				handler.Error(c, err)
				return
			}
			handler.OK(c, out)
		})
	}
}

// plain adapts a delete without cascade result.
func plain(del func(ctx context.Context, id, actor string) error) func(context.Context, string, string) (interface{}, error) {
	return func(ctx context.Context, id, actor string) (interface{}, error) {
		return nil, del(ctx, id, actor)
	}
}

// cascading adapts a delete that reports the records it removed.
func cascading[R any](del func(ctx context.Context, id, actor string) (*R, error)) func(context.Context, string, string) (interface{}, error) {
	return func(ctx context.Context, id, actor string) (interface{}, error) {
		res, err := del(ctx, id, actor)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	s := h.service

	register(r, "/organizations", resource[model.Organization, model.CreateOrganizationRequest, model.UpdateSiteRequest]{
		create: s.CreateOrganization,
		get:    s.GetOrganization,
		list: func(c *gin.Context) ([]model.Organization, error) {
			return s.ListOrganizations(c.Request.Context())
		},
		update: s.UpdateOrganization,
		remove: plain(s.DeleteOrganization),
	})

	register(r, "/hospitals", resource[model.Hospital, model.CreateHospitalRequest, model.UpdateSiteRequest]{
		create: s.CreateHospital,
		get:    s.GetHospital,
		list: func(c *gin.Context) ([]model.Hospital, error) {
			return s.ListHospitals(c.Request.Context(), c.Query("org_id"))
		},
		update: s.UpdateHospital,
		remove: plain(s.DeleteHospital),
	})

	register(r, "/locations", resource[model.Location, model.CreateLocationRequest, model.UpdateSiteRequest]{
		create: s.CreateLocation,
		get:    s.GetLocation,
		list: func(c *gin.Context) ([]model.Location, error) {
			return s.ListLocations(c.Request.Context(), c.Query("hosp_id"), c.Query("org_id"))
		},
		update: s.UpdateLocation,
		remove: cascading(s.DeleteLocation),
	})

	register(r, "/departments", resource[model.Department, model.CreateDepartmentRequest, model.UpdateDepartmentRequest]{
		create: s.CreateDepartment,
		get:    s.GetDepartment,
		list: func(c *gin.Context) ([]model.Department, error) {
			return s.ListDepartments(c.Request.Context(), c.Query("org_id"))
		},
		update: s.UpdateDepartment,
		remove: cascading(s.DeleteDepartment),
	})

	register(r, "/teams", resource[model.Team, model.CreateTeamRequest, model.UpdateTeamRequest]{
		create: s.CreateTeam,
		get:    s.GetTeam,
		list: func(c *gin.Context) ([]model.Team, error) {
			return s.ListTeams(c.Request.Context(), c.Query("dep_id"), c.Query("org_id"))
		},
		update: s.UpdateTeam,
		remove: cascading(s.DeleteTeam),
	})

	register(r, "/users", resource[model.User, model.CreateUserRequest, model.UpdateUserRequest]{
		create: s.CreateUser,
		get:    s.GetUser,
		list: func(c *gin.Context) ([]model.User, error) {
			return s.ListUsers(c.Request.Context(), c.Query("org_id"), c.Query("department_id"))
		},
		update: s.UpdateUser,
		remove: cascading(s.DeleteUser),
	})

	register(r, "/modules", resource[model.Module, model.CreateModuleRequest, model.UpdateModuleRequest]{
		create: s.CreateModule,
		get:    s.GetModule,
		list: func(c *gin.Context) ([]model.Module, error) {
			return s.ListModules(c.Request.Context())
		},
		update: s.UpdateModule,
		remove: cascading(s.DeleteModule),
	})
}
