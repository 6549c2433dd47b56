package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/pkg/utils"
)

type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context) ([]*domain.Service, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Service, error)
	Create(ctx context.Context, service *domain.Service) (string, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// ApplyIncrements é usado para ProfileSlotsOccupied e ExpenseTotal, que
	// são mantidos por incremento atômico como os agregados da categoria
	ApplyIncrements(ctx context.Context, id string, increments []firestoredb.Increment) error
}

type serviceRepository struct {
	conn *firestoredb.Connection
}

func NewServiceRepository(conn *firestoredb.Connection) ServiceRepository {
	return &serviceRepository{
		conn: conn,
	}
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	snap, err := r.conn.GetByID(ctx, firestoredb.CollectionServices, id)
	if err != nil {
		return nil, &domain.StoreError{Op: "service.GetByID", Err: err}
	}
	if snap == nil {
		return nil, nil
	}

	return r.decode(snap)
}

func (r *serviceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	return r.query(ctx, nil)
}

func (r *serviceRepository) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Service, error) {
	return r.query(ctx, []firestoredb.Filter{
		{Path: "categoryId", Op: "==", Value: categoryID},
	})
}

func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) (string, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return "", err
	}

	if err := r.conn.Create(ctx, firestoredb.CollectionServices, id, service); err != nil {
		return "", &domain.StoreError{Op: "service.Create", Err: err}
	}

	service.ID = id
	return id, nil
}

func (r *serviceRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	patch["updatedAt"] = firestore.ServerTimestamp

	if err := r.conn.Update(ctx, firestoredb.CollectionServices, id, patch); err != nil {
		return &domain.StoreError{Op: "service.Update", Err: err}
	}

	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	if err := r.conn.Remove(ctx, firestoredb.CollectionServices, id); err != nil {
		return &domain.StoreError{Op: "service.Delete", Err: err}
	}

	return nil
}

func (r *serviceRepository) ApplyIncrements(ctx context.Context, id string, increments []firestoredb.Increment) error {
	if len(increments) == 0 {
		return nil
	}

	if err := r.conn.ApplyIncrements(ctx, firestoredb.CollectionServices, id, increments); err != nil {
		return &domain.StoreError{Op: "service.ApplyIncrements", Err: err}
	}

	return nil
}

func (r *serviceRepository) query(ctx context.Context, filters []firestoredb.Filter) ([]*domain.Service, error) {
	snaps, err := r.conn.Query(ctx, firestoredb.CollectionServices, filters)
	if err != nil {
		return nil, &domain.StoreError{Op: "service.query", Err: err}
	}

	services := make([]*domain.Service, 0, len(snaps))
	for _, snap := range snaps {
		service, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}

	return services, nil
}

func (r *serviceRepository) decode(snap *firestore.DocumentSnapshot) (*domain.Service, error) {
	service := &domain.Service{}
	if err := snap.DataTo(service); err != nil {
		return nil, &domain.StoreError{Op: "service.decode", Err: err}
	}

	service.ID = snap.Ref.ID
	return service, nil
}
