// Package renewing é a máquina de estados de pagamento/renovação: orquestra
// as operações compostas (criar, renovar, corrigir último pagamento, excluir
// último pagamento, cortar) que atravessam o razão de pagamentos, os campos
// current* das entidades e o gerenciador de contadores.
//
// A escrita primária vem sempre primeiro e aborta a operação em caso de
// falha; os demais passos são efeitos secundários de melhor esforço.
package renewing

import (
	"context"
	"errors"
	"time"

	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/aggregating"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/currency"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/ledgering"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/notifying"
	"github.com/vfg2006/subscription-manager-api/pkg/utils"
)

// Erros específicos do contexto de renovação e ciclo de vida
var (
	ErrNoFreeSlots  = errors.New("serviço sem vagas livres")
	ErrProfileTaken = errors.New("número de perfil já ocupado por outra venda ativa")
)

// RenewalManager é o contrato consumido pelos handlers da API
type RenewalManager interface {
	CreateService(ctx context.Context, input CreateServiceInput) (*domain.Service, error)
	RenewService(ctx context.Context, serviceID string, input RenewalInput) (*domain.Service, error)
	EditLastServicePayment(ctx context.Context, serviceID string, patch ledgering.PaymentPatch) (*domain.Service, error)
	DeleteLastServicePayment(ctx context.Context, serviceID string) (*domain.Service, error)
	SetServiceActive(ctx context.Context, serviceID string, active bool) (*domain.Service, error)
	DeleteService(ctx context.Context, serviceID string, deleteLedger bool) error
	GetService(ctx context.Context, serviceID string) (*domain.Service, error)
	ListServices(ctx context.Context, categoryID string) ([]*domain.Service, error)
	ListServicePayments(ctx context.Context, serviceID string) ([]*domain.Payment, error)

	CreateSale(ctx context.Context, input CreateSaleInput) (*domain.Sale, error)
	RenewSale(ctx context.Context, saleID string, input RenewalInput) (*domain.Sale, error)
	EditLastSalePayment(ctx context.Context, saleID string, patch ledgering.PaymentPatch) (*domain.Sale, error)
	DeleteLastSalePayment(ctx context.Context, saleID string) (*domain.Sale, error)
	CutSale(ctx context.Context, saleID string) (*domain.Sale, error)
	DeleteSale(ctx context.Context, saleID string, deleteLedger bool) error
	GetSale(ctx context.Context, saleID string) (*domain.Sale, error)
	ListSales(ctx context.Context, serviceID string) ([]*domain.Sale, error)
	ListSalePayments(ctx context.Context, saleID string) ([]*domain.Payment, error)
}

type Service struct {
	serviceRepo  repository.ServiceRepository
	saleRepo     repository.SaleRepository
	categoryRepo repository.CategoryRepository
	ledger       ledgering.Ledger
	counters     aggregating.CounterManager
	notifier     notifying.Notifier
	normalizer   currency.Normalizer
}

func NewService(
	serviceRepo repository.ServiceRepository,
	saleRepo repository.SaleRepository,
	categoryRepo repository.CategoryRepository,
	ledger ledgering.Ledger,
	counters aggregating.CounterManager,
	notifier notifying.Notifier,
	normalizer currency.Normalizer,
) RenewalManager {
	return &Service{
		serviceRepo:  serviceRepo,
		saleRepo:     saleRepo,
		categoryRepo: categoryRepo,
		ledger:       ledger,
		counters:     counters,
		notifier:     notifier,
		normalizer:   normalizer,
	}
}

// CreateServiceInput são os dados de criação de um serviço junto com seu
// lançamento inicial
type CreateServiceInput struct {
	CategoryID        string
	Name              string
	AccountEmail      string
	Cost              float64
	Currency          string
	BillingCycle      domain.BillingCycle
	PaymentMethod     string
	StartDate         time.Time
	ExpiryDate        time.Time
	ProfileSlotsTotal int64
}

// RenewalInput são os dados de um lançamento de renovação
type RenewalInput struct {
	Amount        float64
	Discount      float64
	Currency      string
	BillingCycle  domain.BillingCycle
	StartDate     time.Time
	ExpiryDate    time.Time
	PaymentMethod string
	Notes         string
}

func (s *Service) CreateService(ctx context.Context, input CreateServiceInput) (*domain.Service, error) {
	if input.ProfileSlotsTotal < 1 {
		return nil, domain.NewValidationError("profile_slots_total", "deve ser pelo menos 1")
	}

	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.NewNotFoundError(firestoredb.CollectionCategories, input.CategoryID)
	}

	start, expiry := normalizeWindow(input.StartDate, input.ExpiryDate, input.BillingCycle)

	service := &domain.Service{
		CategoryID:        input.CategoryID,
		Name:              input.Name,
		AccountEmail:      input.AccountEmail,
		Cost:              input.Cost,
		Currency:          input.Currency,
		BillingCycle:      input.BillingCycle,
		PaymentMethod:     input.PaymentMethod,
		CurrentStartDate:  start,
		CurrentExpiryDate: expiry,
		ProfileSlotsTotal: input.ProfileSlotsTotal,
		Active:            true,
	}

	// Escrita primária: o serviço precisa existir antes do razão
	if _, err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeService, ID: service.ID}
	if _, err := s.ledger.AppendInitial(ctx, owner, ledgering.PaymentInput{
		Amount:        input.Cost,
		Currency:      input.Currency,
		BillingCycle:  input.BillingCycle,
		StartDate:     start,
		ExpiryDate:    expiry,
		PaymentMethod: input.PaymentMethod,
	}); err != nil {
		return nil, err
	}

	runSideEffects(ctx, "service.create", []SideEffect{
		{Name: "category-counters", Run: func(ctx context.Context) error {
			return s.counters.OnServiceCreated(ctx, service.CategoryID, service.ProfileSlotsTotal)
		}},
		{Name: "record-expense", Run: s.recordServiceExpense(service, input.Cost, input.Currency)},
	})

	return service, nil
}

func (s *Service) RenewService(ctx context.Context, serviceID string, input RenewalInput) (*domain.Service, error) {
	service, err := s.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	start, expiry := normalizeWindow(input.StartDate, input.ExpiryDate, input.BillingCycle)

	owner := domain.OwnerRef{Type: domain.OwnerTypeService, ID: serviceID}
	entry, err := s.ledger.AppendRenewal(ctx, owner, ledgering.PaymentInput{
		Amount:        input.Amount,
		Discount:      input.Discount,
		Currency:      input.Currency,
		BillingCycle:  input.BillingCycle,
		StartDate:     start,
		ExpiryDate:    expiry,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.mirrorServiceEntry(ctx, service, entry); err != nil {
		return nil, err
	}

	runSideEffects(ctx, "service.renew", []SideEffect{
		{Name: "record-expense", Run: s.recordServiceExpense(service, entry.FinalAmount, entry.Currency)},
		{Name: "cleanup-notifications", Run: func(ctx context.Context) error {
			s.notifier.CleanupForOwner(ctx, serviceID)
			return nil
		}},
	})

	return service, nil
}

func (s *Service) EditLastServicePayment(ctx context.Context, serviceID string, patch ledgering.PaymentPatch) (*domain.Service, error) {
	service, err := s.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeService, ID: serviceID}

	before, err := s.ledger.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	previous := ledgering.Latest(before)
	if previous == nil {
		return nil, domain.NewNotFoundError(firestoredb.CollectionServicePayments, serviceID)
	}

	edited, stillLatest, err := s.ledger.EditLatest(ctx, owner, patch)
	if err != nil {
		return nil, err
	}

	// Espelha só se, depois da reordenação, o lançamento editado continua
	// sendo o mais recente; caso contrário os campos current* seguem
	// refletindo o lançamento verdadeiramente mais recente
	if stillLatest {
		if err := s.mirrorServiceEntry(ctx, service, edited); err != nil {
			return nil, err
		}
	}

	expenseDelta := edited.FinalAmount - previous.FinalAmount
	runSideEffects(ctx, "service.edit-last-payment", []SideEffect{
		{Name: "record-expense", Run: s.recordServiceExpense(service, expenseDelta, edited.Currency)},
	})

	return service, nil
}

func (s *Service) DeleteLastServicePayment(ctx context.Context, serviceID string) (*domain.Service, error) {
	service, err := s.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeService, ID: serviceID}
	deleted, newLatest, err := s.ledger.DeleteLatest(ctx, owner)
	if err != nil {
		return nil, err
	}

	// Rollback: excluir uma renovação devolve o dono ao lançamento anterior.
	// Com o razão vazio os campos current* ficam como estão — o dono deve ser
	// desativado ou excluído em seguida, nenhum valor sintético é inventado.
	if newLatest != nil {
		if err := s.mirrorServiceEntry(ctx, service, newLatest); err != nil {
			return nil, err
		}
	}

	runSideEffects(ctx, "service.delete-last-payment", []SideEffect{
		{Name: "record-expense", Run: s.recordServiceExpense(service, -deleted.FinalAmount, deleted.Currency)},
	})

	return service, nil
}

func (s *Service) SetServiceActive(ctx context.Context, serviceID string, active bool) (*domain.Service, error) {
	service, err := s.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if service.Active == active {
		return service, nil
	}

	freeSlotsAtTransition := service.FreeSlots()

	if err := s.serviceRepo.Update(ctx, serviceID, map[string]interface{}{
		"active": active,
	}); err != nil {
		return nil, err
	}
	service.Active = active

	effects := []SideEffect{
		{Name: "category-counters", Run: func(ctx context.Context) error {
			return s.counters.OnServiceActivationChanged(ctx, service.CategoryID, active, freeSlotsAtTransition)
		}},
	}
	if !active {
		effects = append(effects, SideEffect{Name: "cleanup-notifications", Run: func(ctx context.Context) error {
			s.notifier.CleanupForOwner(ctx, serviceID)
			return nil
		}})
	}
	runSideEffects(ctx, "service.set-active", effects)

	return service, nil
}

func (s *Service) DeleteService(ctx context.Context, serviceID string, deleteLedger bool) error {
	service, err := s.getService(ctx, serviceID)
	if err != nil {
		return err
	}

	if err := s.serviceRepo.Delete(ctx, serviceID); err != nil {
		return err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeService, ID: serviceID}

	effects := []SideEffect{
		{Name: "category-counters", Run: func(ctx context.Context) error {
			return s.counters.OnServiceDeleted(ctx, service.CategoryID, service)
		}},
		{Name: "cleanup-notifications", Run: func(ctx context.Context) error {
			s.notifier.CleanupForOwner(ctx, serviceID)
			return nil
		}},
	}
	if deleteLedger {
		effects = append(effects, SideEffect{Name: "delete-ledger", Run: func(ctx context.Context) error {
			_, err := s.ledger.DeleteAll(ctx, owner)
			return err
		}})
	}
	runSideEffects(ctx, "service.delete", effects)

	return nil
}

func (s *Service) GetService(ctx context.Context, serviceID string) (*domain.Service, error) {
	return s.getService(ctx, serviceID)
}

func (s *Service) ListServices(ctx context.Context, categoryID string) ([]*domain.Service, error) {
	if categoryID != "" {
		return s.serviceRepo.ListByCategory(ctx, categoryID)
	}

	return s.serviceRepo.List(ctx)
}

func (s *Service) ListServicePayments(ctx context.Context, serviceID string) ([]*domain.Payment, error) {
	if _, err := s.getService(ctx, serviceID); err != nil {
		return nil, err
	}

	return s.ledger.ListByOwner(ctx, domain.OwnerRef{Type: domain.OwnerTypeService, ID: serviceID})
}

func (s *Service) getService(ctx context.Context, serviceID string) (*domain.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, domain.NewNotFoundError(firestoredb.CollectionServices, serviceID)
	}

	return service, nil
}

// mirrorServiceEntry espelha os valores do lançamento nos campos current* do
// serviço
func (s *Service) mirrorServiceEntry(ctx context.Context, service *domain.Service, entry *domain.Payment) error {
	if err := s.serviceRepo.Update(ctx, service.ID, map[string]interface{}{
		"cost":              entry.FinalAmount,
		"currency":          entry.Currency,
		"billingCycle":      string(entry.BillingCycle),
		"paymentMethod":     entry.PaymentMethod,
		"currentStartDate":  entry.StartDate,
		"currentExpiryDate": entry.ExpiryDate,
	}); err != nil {
		return err
	}

	service.Cost = entry.FinalAmount
	service.Currency = entry.Currency
	service.BillingCycle = entry.BillingCycle
	service.PaymentMethod = entry.PaymentMethod
	service.CurrentStartDate = entry.StartDate
	service.CurrentExpiryDate = entry.ExpiryDate

	return nil
}

// recordServiceExpense converte o valor para a moeda contábil e registra a
// despesa na categoria e no acumulado vitalício do serviço
func (s *Service) recordServiceExpense(service *domain.Service, amount float64, currencyCode string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if amount == 0 {
			return nil
		}

		converted, err := s.normalizer.ToAccountingCurrency(amount, currencyCode)
		if err != nil {
			return err
		}

		if err := s.counters.OnExpenseRecorded(ctx, service.CategoryID, converted); err != nil {
			return err
		}

		return s.serviceRepo.ApplyIncrements(ctx, service.ID, []firestoredb.Increment{
			{Field: domain.ServiceFieldExpenseTotal, Delta: converted},
		})
	}
}

// normalizeWindow deriva a data de vencimento do ciclo de cobrança quando o
// chamador não a informou
func normalizeWindow(start, expiry time.Time, cycle domain.BillingCycle) (time.Time, time.Time) {
	if start.IsZero() {
		start = time.Now()
	}
	if expiry.IsZero() {
		expiry = utils.AddMonths(start, cycle.Months())
	}

	return start, expiry
}
