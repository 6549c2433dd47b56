package notifying

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// Notifier é o contrato do engine de notificações de vencimento
type Notifier interface {
	List(ctx context.Context, now time.Time) ([]*domain.Notification, error)
	ToggleRead(ctx context.Context, owner domain.OwnerRef) (*domain.Notification, error)
	TogglePinned(ctx context.Context, owner domain.OwnerRef) (*domain.Notification, error)
	// CleanupForOwner remove todas as notificações do dono. Chamado na
	// renovação e no corte; operação em massa e de melhor esforço.
	CleanupForOwner(ctx context.Context, ownerID string)
}

type Service struct {
	notificationRepo repository.NotificationRepository
	serviceRepo      repository.ServiceRepository
	saleRepo         repository.SaleRepository
	lookaheadDays    int
}

func NewService(
	notificationRepo repository.NotificationRepository,
	serviceRepo repository.ServiceRepository,
	saleRepo repository.SaleRepository,
	lookaheadDays int,
) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		serviceRepo:      serviceRepo,
		saleRepo:         saleRepo,
		lookaheadDays:    lookaheadDays,
	}
}

// List materializa a visão de notificações: todo serviço ativo e venda ativa
// vencendo dentro da janela aparece, com a prioridade re-derivada da data de
// vencimento atual do dono. Linhas persistidas contribuem apenas com os flags
// read/pinned; a prioridade delas nunca é confiada.
func (s *Service) List(ctx context.Context, now time.Time) ([]*domain.Notification, error) {
	persisted, err := s.notificationRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	byOwner := make(map[string]*domain.Notification, len(persisted))
	for _, notification := range persisted {
		byOwner[notification.OwnerID] = notification
	}

	var items []*domain.Notification

	services, err := s.serviceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, service := range services {
		if !service.Active {
			continue
		}
		item := s.buildServiceItem(service, byOwner[service.ID], now)
		if item != nil {
			items = append(items, item)
		}
	}

	sales, err := s.saleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		item := s.buildSaleItem(sale, byOwner[sale.ID], now)
		if item != nil {
			items = append(items, item)
		}
	}

	// Fixadas primeiro, depois por urgência (menos dias restantes primeiro)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Pinned != items[j].Pinned {
			return items[i].Pinned
		}
		return items[i].DaysRemaining < items[j].DaysRemaining
	})

	return items, nil
}

func (s *Service) buildServiceItem(service *domain.Service, row *domain.Notification, now time.Time) *domain.Notification {
	days, priority := Derive(domain.OwnerTypeService, service.CurrentExpiryDate, now)
	if days > s.lookaheadDays {
		return nil
	}

	item := &domain.Notification{
		ID:            service.ID,
		OwnerID:       service.ID,
		OwnerType:     domain.OwnerTypeService,
		Priority:      priority,
		DaysRemaining: days,
		ServiceName:   service.Name,
		Currency:      service.Currency,
		Amount:        service.Cost,
		ExpiryDate:    service.CurrentExpiryDate,
	}

	if row != nil {
		item.Read = row.Read
		item.Pinned = row.Pinned
	}

	return item
}

func (s *Service) buildSaleItem(sale *domain.Sale, row *domain.Notification, now time.Time) *domain.Notification {
	days, priority := Derive(domain.OwnerTypeSale, sale.CurrentExpiryDate, now)
	if days > s.lookaheadDays {
		return nil
	}

	item := &domain.Notification{
		ID:            sale.ID,
		OwnerID:       sale.ID,
		OwnerType:     domain.OwnerTypeSale,
		Priority:      priority,
		DaysRemaining: days,
		ClientName:    sale.ClientName,
		Currency:      sale.Currency,
		Amount:        sale.CurrentFinalPrice,
		ExpiryDate:    sale.CurrentExpiryDate,
	}

	if row != nil {
		item.Read = row.Read
		item.Pinned = row.Pinned
	}

	return item
}

// ToggleRead inverte o flag de lida. Idempotente no sentido último-escritor-
// vence: não há garantia de ordem frente a mudanças concorrentes de
// vencimento no mesmo dono, o que é aceitável porque a prioridade é sempre
// re-derivada na leitura.
func (s *Service) ToggleRead(ctx context.Context, owner domain.OwnerRef) (*domain.Notification, error) {
	notification, err := s.ensureRow(ctx, owner)
	if err != nil {
		return nil, err
	}

	notification.Read = !notification.Read
	if err := s.notificationRepo.Update(ctx, owner.ID, map[string]interface{}{
		"read": notification.Read,
	}); err != nil {
		return nil, err
	}

	return notification, nil
}

// TogglePinned inverte o destaque (resaltada). Fixar só muda a exibição: os
// dias restantes e a prioridade derivada nunca são afetados.
func (s *Service) TogglePinned(ctx context.Context, owner domain.OwnerRef) (*domain.Notification, error) {
	notification, err := s.ensureRow(ctx, owner)
	if err != nil {
		return nil, err
	}

	notification.Pinned = !notification.Pinned
	if err := s.notificationRepo.Update(ctx, owner.ID, map[string]interface{}{
		"pinned": notification.Pinned,
	}); err != nil {
		return nil, err
	}

	return notification, nil
}

func (s *Service) CleanupForOwner(ctx context.Context, ownerID string) {
	if err := s.notificationRepo.DeleteByOwner(ctx, ownerID); err != nil {
		logrus.WithError(err).WithField("owner_id", ownerID).
			Warn("Falha ao limpar notificações do dono")
	}
}

// ensureRow materializa a linha da notificação se ela ainda não existe,
// derivando os campos de exibição do dono
func (s *Service) ensureRow(ctx context.Context, owner domain.OwnerRef) (*domain.Notification, error) {
	notification, err := s.notificationRepo.GetByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if notification != nil {
		return notification, nil
	}

	notification, err = s.materialize(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

func (s *Service) materialize(ctx context.Context, owner domain.OwnerRef) (*domain.Notification, error) {
	now := time.Now()

	switch owner.Type {
	case domain.OwnerTypeSale:
		sale, err := s.saleRepo.GetByID(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, domain.NewNotFoundError(firestoredb.CollectionSales, owner.ID)
		}
		return s.buildSaleRow(sale, now), nil
	default:
		service, err := s.serviceRepo.GetByID(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		if service == nil {
			return nil, domain.NewNotFoundError(firestoredb.CollectionServices, owner.ID)
		}
		return s.buildServiceRow(service, now), nil
	}
}

func (s *Service) buildServiceRow(service *domain.Service, now time.Time) *domain.Notification {
	days, priority := Derive(domain.OwnerTypeService, service.CurrentExpiryDate, now)

	return &domain.Notification{
		OwnerID:       service.ID,
		OwnerType:     domain.OwnerTypeService,
		Priority:      priority,
		DaysRemaining: days,
		ServiceName:   service.Name,
		Currency:      service.Currency,
		Amount:        service.Cost,
		ExpiryDate:    service.CurrentExpiryDate,
	}
}

func (s *Service) buildSaleRow(sale *domain.Sale, now time.Time) *domain.Notification {
	days, priority := Derive(domain.OwnerTypeSale, sale.CurrentExpiryDate, now)

	return &domain.Notification{
		OwnerID:       sale.ID,
		OwnerType:     domain.OwnerTypeSale,
		Priority:      priority,
		DaysRemaining: days,
		ClientName:    sale.ClientName,
		Currency:      sale.Currency,
		Amount:        sale.CurrentFinalPrice,
		ExpiryDate:    sale.CurrentExpiryDate,
	}
}
