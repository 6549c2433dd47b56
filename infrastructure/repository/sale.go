package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/pkg/utils"
)

type SaleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	List(ctx context.Context) ([]*domain.Sale, error)
	ListActive(ctx context.Context) ([]*domain.Sale, error)
	ListByService(ctx context.Context, serviceID string) ([]*domain.Sale, error)
	Create(ctx context.Context, sale *domain.Sale) (string, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type saleRepository struct {
	conn *firestoredb.Connection
}

func NewSaleRepository(conn *firestoredb.Connection) SaleRepository {
	return &saleRepository{
		conn: conn,
	}
}

func (r *saleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	snap, err := r.conn.GetByID(ctx, firestoredb.CollectionSales, id)
	if err != nil {
		return nil, &domain.StoreError{Op: "sale.GetByID", Err: err}
	}
	if snap == nil {
		return nil, nil
	}

	return r.decode(snap)
}

func (r *saleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	return r.query(ctx, nil)
}

func (r *saleRepository) ListActive(ctx context.Context) ([]*domain.Sale, error) {
	return r.query(ctx, []firestoredb.Filter{
		{Path: "status", Op: "==", Value: string(domain.SaleStatusActive)},
	})
}

func (r *saleRepository) ListByService(ctx context.Context, serviceID string) ([]*domain.Sale, error) {
	return r.query(ctx, []firestoredb.Filter{
		{Path: "serviceId", Op: "==", Value: serviceID},
	})
}

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) (string, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return "", err
	}

	if err := r.conn.Create(ctx, firestoredb.CollectionSales, id, sale); err != nil {
		return "", &domain.StoreError{Op: "sale.Create", Err: err}
	}

	sale.ID = id
	return id, nil
}

func (r *saleRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	patch["updatedAt"] = firestore.ServerTimestamp

	if err := r.conn.Update(ctx, firestoredb.CollectionSales, id, patch); err != nil {
		return &domain.StoreError{Op: "sale.Update", Err: err}
	}

	return nil
}

func (r *saleRepository) Delete(ctx context.Context, id string) error {
	if err := r.conn.Remove(ctx, firestoredb.CollectionSales, id); err != nil {
		return &domain.StoreError{Op: "sale.Delete", Err: err}
	}

	return nil
}

func (r *saleRepository) query(ctx context.Context, filters []firestoredb.Filter) ([]*domain.Sale, error) {
	snaps, err := r.conn.Query(ctx, firestoredb.CollectionSales, filters)
	if err != nil {
		return nil, &domain.StoreError{Op: "sale.query", Err: err}
	}

	sales := make([]*domain.Sale, 0, len(snaps))
	for _, snap := range snaps {
		sale, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

func (r *saleRepository) decode(snap *firestore.DocumentSnapshot) (*domain.Sale, error) {
	sale := &domain.Sale{}
	if err := snap.DataTo(sale); err != nil {
		return nil, &domain.StoreError{Op: "sale.decode", Err: err}
	}

	sale.ID = snap.Ref.ID
	return sale, nil
}
