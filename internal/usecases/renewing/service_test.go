package renewing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/aggregating"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/currency"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/ledgering"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/notifying"
	"go.uber.org/mock/gomock"
)

// fixture monta a máquina de estados completa (razão, contadores e
// notificações reais) sobre repositórios em memória, para exercitar as
// operações compostas de ponta a ponta
type fixture struct {
	manager RenewalManager

	categories map[string]*domain.Category
	services   map[string]*domain.Service
	sales      map[string]*domain.Sale

	servicePayments *paymentStore
	salePayments    *paymentStore

	// categoryDeltas acumula os incrementos aplicados por categoria e campo
	categoryDeltas map[string]map[string]float64
	cleanedOwners  []string
	saleUpdates    int
}

type paymentStore struct {
	seq     int
	entries []*domain.Payment
}

func (s *paymentStore) create(payment *domain.Payment) string {
	s.seq++
	id := fmt.Sprintf("PAY%03d", s.seq)
	payment.ID = id

	stored := *payment
	s.entries = append(s.entries, &stored)
	return id
}

func (s *paymentStore) listByOwner(ownerID string) []*domain.Payment {
	var out []*domain.Payment
	for _, entry := range s.entries {
		if entry.OwnerID == ownerID {
			clone := *entry
			out = append(out, &clone)
		}
	}
	return out
}

func (s *paymentStore) update(id string, patch map[string]interface{}) {
	for _, entry := range s.entries {
		if entry.ID != id {
			continue
		}
		for field, value := range patch {
			switch field {
			case "amount":
				entry.Amount = value.(float64)
			case "discount":
				entry.Discount = value.(float64)
			case "finalAmount":
				entry.FinalAmount = value.(float64)
			case "currency":
				entry.Currency = value.(string)
			case "billingCycle":
				entry.BillingCycle = domain.BillingCycle(value.(string))
			case "startDate":
				entry.StartDate = value.(time.Time)
			case "expiryDate":
				entry.ExpiryDate = value.(time.Time)
			case "paymentMethod":
				entry.PaymentMethod = value.(string)
			case "notes":
				entry.Notes = value.(string)
			}
		}
	}
}

func (s *paymentStore) delete(id string) {
	for i, entry := range s.entries {
		if entry.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *paymentStore) deleteByOwner(ownerID string) int {
	kept := s.entries[:0]
	deleted := 0
	for _, entry := range s.entries {
		if entry.OwnerID == ownerID {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept
	return deleted
}

func deltaAsFloat(delta interface{}) float64 {
	switch v := delta.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		categories:      make(map[string]*domain.Category),
		services:        make(map[string]*domain.Service),
		sales:           make(map[string]*domain.Sale),
		servicePayments: &paymentStore{},
		salePayments:    &paymentStore{},
		categoryDeltas:  make(map[string]map[string]float64),
	}

	categoryRepo := mocks.NewMockCategoryRepository(ctrl)
	categoryRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string) (*domain.Category, error) {
			category, ok := f.categories[id]
			if !ok {
				return nil, nil
			}
			clone := *category
			return &clone, nil
		})
	categoryRepo.EXPECT().ApplyIncrements(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string, increments []firestoredb.Increment) error {
			deltas, ok := f.categoryDeltas[id]
			if !ok {
				deltas = make(map[string]float64)
				f.categoryDeltas[id] = deltas
			}
			for _, increment := range increments {
				deltas[increment.Field] += deltaAsFloat(increment.Delta)
			}
			return nil
		})

	serviceRepo := mocks.NewMockServiceRepository(ctrl)
	serviceRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string) (*domain.Service, error) {
			service, ok := f.services[id]
			if !ok {
				return nil, nil
			}
			clone := *service
			return &clone, nil
		})
	serviceRepo.EXPECT().Create(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, service *domain.Service) (string, error) {
			id := fmt.Sprintf("SRV%03d", len(f.services)+1)
			service.ID = id
			stored := *service
			f.services[id] = &stored
			return id, nil
		})
	serviceRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string, patch map[string]interface{}) error {
			service := f.services[id]
			for field, value := range patch {
				switch field {
				case "cost":
					service.Cost = value.(float64)
				case "currency":
					service.Currency = value.(string)
				case "billingCycle":
					service.BillingCycle = domain.BillingCycle(value.(string))
				case "paymentMethod":
					service.PaymentMethod = value.(string)
				case "currentStartDate":
					service.CurrentStartDate = value.(time.Time)
				case "currentExpiryDate":
					service.CurrentExpiryDate = value.(time.Time)
				case "active":
					service.Active = value.(bool)
				}
			}
			return nil
		})
	serviceRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string) error {
			delete(f.services, id)
			return nil
		})
	serviceRepo.EXPECT().ApplyIncrements(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string, increments []firestoredb.Increment) error {
			service := f.services[id]
			for _, increment := range increments {
				switch increment.Field {
				case domain.ServiceFieldExpenseTotal:
					service.ExpenseTotal += deltaAsFloat(increment.Delta)
				case domain.ServiceFieldProfileSlotsOccupied:
					service.ProfileSlotsOccupied += increment.Delta.(int64)
				}
			}
			return nil
		})

	saleRepo := mocks.NewMockSaleRepository(ctrl)
	saleRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string) (*domain.Sale, error) {
			sale, ok := f.sales[id]
			if !ok {
				return nil, nil
			}
			clone := *sale
			return &clone, nil
		})
	saleRepo.EXPECT().Create(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, sale *domain.Sale) (string, error) {
			id := fmt.Sprintf("SAL%03d", len(f.sales)+1)
			sale.ID = id
			stored := *sale
			f.sales[id] = &stored
			return id, nil
		})
	saleRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string, patch map[string]interface{}) error {
			f.saleUpdates++
			sale := f.sales[id]
			for field, value := range patch {
				switch field {
				case "currentPrice":
					sale.CurrentPrice = value.(float64)
				case "currentDiscount":
					sale.CurrentDiscount = value.(float64)
				case "currentFinalPrice":
					sale.CurrentFinalPrice = value.(float64)
				case "currency":
					sale.Currency = value.(string)
				case "billingCycle":
					sale.BillingCycle = domain.BillingCycle(value.(string))
				case "currentStartDate":
					sale.CurrentStartDate = value.(time.Time)
				case "currentExpiryDate":
					sale.CurrentExpiryDate = value.(time.Time)
				case "status":
					sale.Status = domain.SaleStatus(value.(string))
				}
			}
			return nil
		})
	saleRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string) error {
			delete(f.sales, id)
			return nil
		})
	saleRepo.EXPECT().ListByService(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, serviceID string) ([]*domain.Sale, error) {
			var out []*domain.Sale
			for _, sale := range f.sales {
				if sale.ServiceID == serviceID {
					clone := *sale
					out = append(out, &clone)
				}
			}
			return out, nil
		})

	servicePaymentRepo := mocks.NewMockPaymentRepository(ctrl)
	stubPaymentRepo(servicePaymentRepo, f.servicePayments)

	salePaymentRepo := mocks.NewMockPaymentRepository(ctrl)
	stubPaymentRepo(salePaymentRepo, f.salePayments)

	notificationRepo := mocks.NewMockNotificationRepository(ctrl)
	notificationRepo.EXPECT().DeleteByOwner(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, ownerID string) error {
			f.cleanedOwners = append(f.cleanedOwners, ownerID)
			return nil
		})

	ledger := ledgering.NewService(servicePaymentRepo, salePaymentRepo)
	counters := aggregating.NewService(categoryRepo)
	notifier := notifying.NewService(notificationRepo, serviceRepo, saleRepo, 30)
	normalizer := currency.NewFixedNormalizer("BRL", map[string]float64{"USD": 5})

	f.manager = NewService(serviceRepo, saleRepo, categoryRepo, ledger, counters, notifier, normalizer)
	return f
}

func stubPaymentRepo(repo *mocks.MockPaymentRepository, store *paymentStore) {
	repo.EXPECT().ListByOwner(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, ownerID string) ([]*domain.Payment, error) {
			return store.listByOwner(ownerID), nil
		})
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, payment *domain.Payment) (string, error) {
			return store.create(payment), nil
		})
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string, patch map[string]interface{}) error {
			store.update(id, patch)
			return nil
		})
	repo.EXPECT().Delete(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, id string) error {
			store.delete(id)
			return nil
		})
	repo.EXPECT().DeleteByOwner(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, ownerID string) (int, error) {
			return store.deleteByOwner(ownerID), nil
		})
}

func (f *fixture) seedCategory(id string) {
	f.categories[id] = &domain.Category{ID: id, Name: "Streaming", Active: true}
}

func (f *fixture) deltas(categoryID string) map[string]float64 {
	deltas, ok := f.categoryDeltas[categoryID]
	if !ok {
		return map[string]float64{}
	}
	return deltas
}

func TestService_CreateService(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	service, err := f.manager.CreateService(context.Background(), CreateServiceInput{
		CategoryID:        "CAT001",
		Name:              "Netflix Premium",
		Cost:              10,
		Currency:          "USD",
		BillingCycle:      domain.BillingCycleMonthly,
		PaymentMethod:     "cartão",
		StartDate:         start,
		ProfileSlotsTotal: 4,
	})

	require.NoError(t, err)
	assert.True(t, service.Active)
	// Vencimento derivado do ciclo mensal
	assert.Equal(t, start.AddDate(0, 1, 0), service.CurrentExpiryDate)

	entries := f.servicePayments.listByOwner(service.ID)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsInitial)
	assert.Equal(t, "Pagamento inicial", entries[0].Label)

	deltas := f.deltas("CAT001")
	assert.Equal(t, 1.0, deltas[domain.CategoryFieldTotalServices])
	assert.Equal(t, 1.0, deltas[domain.CategoryFieldActiveServices])
	assert.Equal(t, 4.0, deltas[domain.CategoryFieldFreeProfileSlotsTotal])
	// Despesa convertida de USD para a moeda contábil
	assert.Equal(t, 50.0, deltas[domain.CategoryFieldTotalExpense])
	assert.Equal(t, 50.0, f.services[service.ID].ExpenseTotal)
}

func TestService_CreateService_CategoriaInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.CreateService(context.Background(), CreateServiceInput{
		CategoryID:        "CAT999",
		Name:              "Netflix Premium",
		Cost:              10,
		Currency:          "BRL",
		BillingCycle:      domain.BillingCycleMonthly,
		ProfileSlotsTotal: 4,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_RenovacaoEExclusaoDoUltimoPagamento(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	service, err := f.manager.CreateService(context.Background(), CreateServiceInput{
		CategoryID:        "CAT001",
		Name:              "Netflix Premium",
		Cost:              10,
		Currency:          "USD",
		BillingCycle:      domain.BillingCycleMonthly,
		StartDate:         start,
		ProfileSlotsTotal: 4,
	})
	require.NoError(t, err)

	renewStart := start.AddDate(0, 1, 0)
	service, err = f.manager.RenewService(context.Background(), service.ID, RenewalInput{
		Amount:       15,
		Currency:     "USD",
		BillingCycle: domain.BillingCycleMonthly,
		StartDate:    renewStart,
	})
	require.NoError(t, err)

	// Campos current* espelham a renovação
	assert.Equal(t, 15.0, service.Cost)
	assert.Equal(t, renewStart, service.CurrentStartDate)

	entries := f.servicePayments.listByOwner(service.ID)
	require.Len(t, entries, 2)

	assert.Equal(t, 125.0, f.deltas("CAT001")[domain.CategoryFieldTotalExpense])
	assert.Equal(t, 125.0, f.services[service.ID].ExpenseTotal)

	// Renovar limpa as notificações do serviço
	assert.Equal(t, []string{service.ID}, f.cleanedOwners)

	// Excluir o último pagamento devolve o serviço ao lançamento anterior
	service, err = f.manager.DeleteLastServicePayment(context.Background(), service.ID)
	require.NoError(t, err)

	assert.Equal(t, 10.0, service.Cost)
	assert.Equal(t, start, service.CurrentStartDate)
	assert.Equal(t, 50.0, f.deltas("CAT001")[domain.CategoryFieldTotalExpense])
	assert.Equal(t, 50.0, f.services[service.ID].ExpenseTotal)

	// A exclusão do último pagamento não limpa notificações
	assert.Equal(t, []string{service.ID}, f.cleanedOwners)
}

func TestService_SetServiceActive(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")

	service, err := f.manager.CreateService(context.Background(), CreateServiceInput{
		CategoryID:        "CAT001",
		Name:              "Netflix Premium",
		Cost:              10,
		Currency:          "BRL",
		BillingCycle:      domain.BillingCycleMonthly,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ProfileSlotsTotal: 4,
	})
	require.NoError(t, err)

	service, err = f.manager.SetServiceActive(context.Background(), service.ID, false)
	require.NoError(t, err)
	assert.False(t, service.Active)

	deltas := f.deltas("CAT001")
	// Criação (+1/+4) e desativação (-1/-4) se anulam
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldActiveServices])
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldFreeProfileSlotsTotal])

	// Desativar um serviço já inativo é um no-op
	updatesBefore := f.cleanedOwners
	_, err = f.manager.SetServiceActive(context.Background(), service.ID, false)
	require.NoError(t, err)
	assert.Equal(t, updatesBefore, f.cleanedOwners)
}

func TestService_DeleteService_ComHistorico(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")

	service, err := f.manager.CreateService(context.Background(), CreateServiceInput{
		CategoryID:        "CAT001",
		Name:              "Netflix Premium",
		Cost:              10,
		Currency:          "BRL",
		BillingCycle:      domain.BillingCycleMonthly,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ProfileSlotsTotal: 4,
	})
	require.NoError(t, err)

	err = f.manager.DeleteService(context.Background(), service.ID, true)
	require.NoError(t, err)

	assert.NotContains(t, f.services, service.ID)
	assert.Empty(t, f.servicePayments.listByOwner(service.ID))

	deltas := f.deltas("CAT001")
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldTotalServices])
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldActiveServices])
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldFreeProfileSlotsTotal])
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldTotalExpense])
	assert.Contains(t, f.cleanedOwners, service.ID)
}
