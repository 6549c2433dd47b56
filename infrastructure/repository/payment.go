package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/pkg/utils"
)

// PaymentRepository é o acesso a um razão de pagamentos. Existem duas
// instâncias, uma sobre service_payments e outra sobre sale_payments; a
// implementação é a mesma, muda apenas a coleção.
type PaymentRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) (string, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int, error)
}

type paymentRepository struct {
	conn       *firestoredb.Connection
	collection string
}

func NewServicePaymentRepository(conn *firestoredb.Connection) PaymentRepository {
	return &paymentRepository{conn: conn, collection: firestoredb.CollectionServicePayments}
}

func NewSalePaymentRepository(conn *firestoredb.Connection) PaymentRepository {
	return &paymentRepository{conn: conn, collection: firestoredb.CollectionSalePayments}
}

func (r *paymentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Payment, error) {
	snaps, err := r.conn.Query(ctx, r.collection, []firestoredb.Filter{
		{Path: "ownerId", Op: "==", Value: ownerID},
	})
	if err != nil {
		return nil, &domain.StoreError{Op: "payment.ListByOwner", Err: err}
	}

	payments := make([]*domain.Payment, 0, len(snaps))
	for _, snap := range snaps {
		payment, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) (string, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return "", err
	}

	if err := r.conn.Create(ctx, r.collection, id, payment); err != nil {
		return "", &domain.StoreError{Op: "payment.Create", Err: err}
	}

	payment.ID = id
	return id, nil
}

func (r *paymentRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	if err := r.conn.Update(ctx, r.collection, id, patch); err != nil {
		return &domain.StoreError{Op: "payment.Update", Err: err}
	}

	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	if err := r.conn.Remove(ctx, r.collection, id); err != nil {
		return &domain.StoreError{Op: "payment.Delete", Err: err}
	}

	return nil
}

// DeleteByOwner remove todos os lançamentos do dono; usado apenas quando o
// próprio dono é excluído com o histórico
func (r *paymentRepository) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	payments, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, payment := range payments {
		if err := r.Delete(ctx, payment.ID); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

func (r *paymentRepository) decode(snap *firestore.DocumentSnapshot) (*domain.Payment, error) {
	payment := &domain.Payment{}
	if err := snap.DataTo(payment); err != nil {
		return nil, &domain.StoreError{Op: "payment.decode", Err: err}
	}

	payment.ID = snap.Ref.ID
	return payment, nil
}
