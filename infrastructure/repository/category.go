package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/pkg/utils"
)

type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (string, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// ApplyIncrements aplica incrementos atômicos nos agregados da categoria.
	// Nunca deve ser chamado fora do gerenciador de contadores ou do job de
	// reconciliação.
	ApplyIncrements(ctx context.Context, id string, increments []firestoredb.Increment) error
}

type categoryRepository struct {
	conn *firestoredb.Connection
}

func NewCategoryRepository(conn *firestoredb.Connection) CategoryRepository {
	return &categoryRepository{
		conn: conn,
	}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	snap, err := r.conn.GetByID(ctx, firestoredb.CollectionCategories, id)
	if err != nil {
		return nil, &domain.StoreError{Op: "category.GetByID", Err: err}
	}
	if snap == nil {
		return nil, nil
	}

	return r.decode(snap)
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	snaps, err := r.conn.Query(ctx, firestoredb.CollectionCategories, nil)
	if err != nil {
		return nil, &domain.StoreError{Op: "category.List", Err: err}
	}

	categories := make([]*domain.Category, 0, len(snaps))
	for _, snap := range snaps {
		category, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (string, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return "", err
	}

	if err := r.conn.Create(ctx, firestoredb.CollectionCategories, id, category); err != nil {
		return "", &domain.StoreError{Op: "category.Create", Err: err}
	}

	category.ID = id
	return id, nil
}

func (r *categoryRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	patch["updatedAt"] = firestore.ServerTimestamp

	if err := r.conn.Update(ctx, firestoredb.CollectionCategories, id, patch); err != nil {
		return &domain.StoreError{Op: "category.Update", Err: err}
	}

	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.conn.Remove(ctx, firestoredb.CollectionCategories, id); err != nil {
		return &domain.StoreError{Op: "category.Delete", Err: err}
	}

	return nil
}

func (r *categoryRepository) ApplyIncrements(ctx context.Context, id string, increments []firestoredb.Increment) error {
	if len(increments) == 0 {
		return nil
	}

	if err := r.conn.ApplyIncrements(ctx, firestoredb.CollectionCategories, id, increments); err != nil {
		return &domain.StoreError{Op: "category.ApplyIncrements", Err: err}
	}

	return nil
}

func (r *categoryRepository) decode(snap *firestore.DocumentSnapshot) (*domain.Category, error) {
	category := &domain.Category{}
	if err := snap.DataTo(category); err != nil {
		return nil, &domain.StoreError{Op: "category.decode", Err: err}
	}

	category.ID = snap.Ref.ID
	return category, nil
}
