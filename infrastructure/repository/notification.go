package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// NotificationRepository acessa as notificações de vencimento. O id do
// documento é o id do dono (serviço ou venda), então existe no máximo uma
// notificação por dono.
type NotificationRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*domain.Notification, error)
	List(ctx context.Context) ([]*domain.Notification, error)
	Create(ctx context.Context, notification *domain.Notification) error
	Update(ctx context.Context, ownerID string, patch map[string]interface{}) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type notificationRepository struct {
	conn *firestoredb.Connection
}

func NewNotificationRepository(conn *firestoredb.Connection) NotificationRepository {
	return &notificationRepository{
		conn: conn,
	}
}

func (r *notificationRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Notification, error) {
	snap, err := r.conn.GetByID(ctx, firestoredb.CollectionNotifications, ownerID)
	if err != nil {
		return nil, &domain.StoreError{Op: "notification.GetByOwner", Err: err}
	}
	if snap == nil {
		return nil, nil
	}

	return r.decode(snap)
}

func (r *notificationRepository) List(ctx context.Context) ([]*domain.Notification, error) {
	snaps, err := r.conn.Query(ctx, firestoredb.CollectionNotifications, nil)
	if err != nil {
		return nil, &domain.StoreError{Op: "notification.List", Err: err}
	}

	notifications := make([]*domain.Notification, 0, len(snaps))
	for _, snap := range snaps {
		notification, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if err := r.conn.Create(ctx, firestoredb.CollectionNotifications, notification.OwnerID, notification); err != nil {
		return &domain.StoreError{Op: "notification.Create", Err: err}
	}

	notification.ID = notification.OwnerID
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, ownerID string, patch map[string]interface{}) error {
	patch["updatedAt"] = firestore.ServerTimestamp

	if err := r.conn.Update(ctx, firestoredb.CollectionNotifications, ownerID, patch); err != nil {
		return &domain.StoreError{Op: "notification.Update", Err: err}
	}

	return nil
}

func (r *notificationRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	if err := r.conn.Remove(ctx, firestoredb.CollectionNotifications, ownerID); err != nil {
		return &domain.StoreError{Op: "notification.DeleteByOwner", Err: err}
	}

	return nil
}

func (r *notificationRepository) decode(snap *firestore.DocumentSnapshot) (*domain.Notification, error) {
	notification := &domain.Notification{}
	if err := snap.DataTo(notification); err != nil {
		return nil, &domain.StoreError{Op: "notification.decode", Err: err}
	}

	notification.ID = snap.Ref.ID
	return notification, nil
}
