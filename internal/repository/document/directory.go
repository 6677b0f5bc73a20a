package document

import (
	"context"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/mapper"
)

// directory is a plain CRUD repository for master data.
type directory[T any] struct {
	c      collection[T]
	encode func(T) map[string]any
}

func newDirectory[T any](store repository.DocumentStore, name string, kind model.Kind, encode func(T) map[string]any) *directory[T] {
	return &directory[T]{c: newCollection[T](store, name, kind), encode: encode}
}

func (d *directory[T]) Create(ctx context.Context, entity T, actor string) (*T, error) {
	return d.c.create(ctx, stamp(d.encode(entity), actor))
}

func (d *directory[T]) Get(ctx context.Context, id string) (*T, error) {
	return d.c.get(ctx, id)
}

func (d *directory[T]) List(ctx context.Context, filters ...repository.Filter) ([]T, error) {
	return d.c.list(ctx, filters...)
}

func (d *directory[T]) Update(ctx context.Context, id string, changes map[string]any, actor string) (*T, error) {
	return d.c.update(ctx, id, changes, actor)
}

func (d *directory[T]) Delete(ctx context.Context, id string) error {
	_, err := d.c.remove(ctx, id)
	return err
}

func NewOrganizationRepository(store repository.DocumentStore) repository.OrganizationRepository {
	return newDirectory(store, repository.CollectionOrganizations, model.KindOrganization, mapper.OrganizationFields)
}

func NewHospitalRepository(store repository.DocumentStore) repository.HospitalRepository {
	return newDirectory(store, repository.CollectionHospitals, model.KindHospital, mapper.HospitalFields)
}

func NewLocationRepository(store repository.DocumentStore) repository.LocationRepository {
	return newDirectory(store, repository.CollectionLocations, model.KindLocation, mapper.LocationFields)
}

func NewDepartmentRepository(store repository.DocumentStore) repository.DepartmentRepository {
	return newDirectory(store, repository.CollectionDepartments, model.KindDepartment, mapper.DepartmentFields)
}

func NewTeamRepository(store repository.DocumentStore) repository.TeamRepository {
	return newDirectory(store, repository.CollectionTeams, model.KindTeam, mapper.TeamFields)
}

func NewUserRepository(store repository.DocumentStore) repository.UserRepository {
	return newDirectory(store, repository.CollectionUsers, model.KindUser, mapper.UserFields)
}

func NewModuleRepository(store repository.DocumentStore) repository.ModuleRepository {
	return newDirectory(store, repository.CollectionModules, model.KindModule, mapper.ModuleFields)
}
