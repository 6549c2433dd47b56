package renewing

import (
	"context"
	"time"

	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/ledgering"
)

// CreateSaleInput são os dados de criação de uma venda junto com seu
// lançamento inicial
type CreateSaleInput struct {
	ClientID      string
	ClientName    string
	ServiceID     string
	ProfileNumber *int
	Price         float64
	Discount      float64
	Currency      string
	BillingCycle  domain.BillingCycle
	StartDate     time.Time
	ExpiryDate    time.Time
	PaymentMethod string
	Notes         string
}

func (s *Service) CreateSale(ctx context.Context, input CreateSaleInput) (*domain.Sale, error) {
	service, err := s.getService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}

	if input.ProfileNumber != nil {
		if err := s.checkProfileAvailable(ctx, service, *input.ProfileNumber); err != nil {
			return nil, err
		}
	}

	start, expiry := normalizeWindow(input.StartDate, input.ExpiryDate, input.BillingCycle)

	sale := &domain.Sale{
		ClientID:          input.ClientID,
		ClientName:        input.ClientName,
		ServiceID:         input.ServiceID,
		CategoryID:        service.CategoryID,
		ProfileNumber:     input.ProfileNumber,
		Status:            domain.SaleStatusActive,
		CurrentPrice:      input.Price,
		CurrentDiscount:   input.Discount,
		CurrentFinalPrice: input.Price - input.Discount,
		Currency:          input.Currency,
		BillingCycle:      input.BillingCycle,
		CurrentStartDate:  start,
		CurrentExpiryDate: expiry,
	}

	// Escrita primária
	if _, err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeSale, ID: sale.ID}
	if _, err := s.ledger.AppendInitial(ctx, owner, ledgering.PaymentInput{
		Amount:        input.Price,
		Discount:      input.Discount,
		Currency:      input.Currency,
		BillingCycle:  input.BillingCycle,
		StartDate:     start,
		ExpiryDate:    expiry,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
	}); err != nil {
		return nil, err
	}

	effects := []SideEffect{
		{Name: "category-counters", Run: func(ctx context.Context) error {
			converted, err := s.normalizer.ToAccountingCurrency(sale.CurrentFinalPrice, sale.Currency)
			if err != nil {
				return err
			}
			return s.counters.OnSaleCreated(ctx, sale.CategoryID, converted)
		}},
	}
	if sale.OccupiesSlot() {
		effects = append(effects, s.occupancyEffects(sale, 1)...)
	}
	runSideEffects(ctx, "sale.create", effects)

	return sale, nil
}

func (s *Service) RenewSale(ctx context.Context, saleID string, input RenewalInput) (*domain.Sale, error) {
	sale, err := s.getSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	start, expiry := normalizeWindow(input.StartDate, input.ExpiryDate, input.BillingCycle)

	owner := domain.OwnerRef{Type: domain.OwnerTypeSale, ID: saleID}
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

	previousFinal := sale.CurrentFinalPrice
	previousCurrency := sale.Currency

	if err := s.mirrorSaleEntry(ctx, sale, entry); err != nil {
		return nil, err
	}

	runSideEffects(ctx, "sale.renew", []SideEffect{
		{Name: "revenue-delta", Run: s.revenueDelta(sale.CategoryID, entry.FinalAmount, entry.Currency, previousFinal, previousCurrency)},
		{Name: "cleanup-notifications", Run: func(ctx context.Context) error {
			s.notifier.CleanupForOwner(ctx, saleID)
			return nil
		}},
	})

	return sale, nil
}

func (s *Service) EditLastSalePayment(ctx context.Context, saleID string, patch ledgering.PaymentPatch) (*domain.Sale, error) {
	sale, err := s.getSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeSale, ID: saleID}

	before, err := s.ledger.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	previous := ledgering.Latest(before)
	if previous == nil {
		return nil, domain.NewNotFoundError(firestoredb.CollectionSalePayments, saleID)
	}

	edited, stillLatest, err := s.ledger.EditLatest(ctx, owner, patch)
	if err != nil {
		return nil, err
	}

	// Sem espelhamento quando o lançamento editado deixou de ser o mais
	// recente — e, nesse caso, o preço corrente da venda não mudou, então a
	// receita agregada também não muda
	if !stillLatest {
		return sale, nil
	}

	if err := s.mirrorSaleEntry(ctx, sale, edited); err != nil {
		return nil, err
	}

	runSideEffects(ctx, "sale.edit-last-payment", []SideEffect{
		{Name: "revenue-delta", Run: s.revenueDelta(sale.CategoryID, edited.FinalAmount, edited.Currency, previous.FinalAmount, previous.Currency)},
	})

	return sale, nil
}

func (s *Service) DeleteLastSalePayment(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.getSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeSale, ID: saleID}
	deleted, newLatest, err := s.ledger.DeleteLatest(ctx, owner)
	if err != nil {
		return nil, err
	}

	// Razão vazio: a venda fica com os campos current* obsoletos e deve ser
	// desativada ou excluída em seguida. As notificações não são tocadas —
	// só renovação e corte limpam.
	if newLatest == nil {
		return sale, nil
	}

	previousFinal := deleted.FinalAmount
	previousCurrency := deleted.Currency

	if err := s.mirrorSaleEntry(ctx, sale, newLatest); err != nil {
		return nil, err
	}

	runSideEffects(ctx, "sale.delete-last-payment", []SideEffect{
		{Name: "revenue-delta", Run: s.revenueDelta(sale.CategoryID, newLatest.FinalAmount, newLatest.Currency, previousFinal, previousCurrency)},
	})

	return sale, nil
}

// CutSale desativa a venda e libera a vaga do perfil. O corte limpa as
// notificações da venda.
func (s *Service) CutSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.getSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if sale.Status == domain.SaleStatusInactive {
		return sale, nil
	}

	occupiedSlot := sale.OccupiesSlot()

	if err := s.saleRepo.Update(ctx, saleID, map[string]interface{}{
		"status": string(domain.SaleStatusInactive),
	}); err != nil {
		return nil, err
	}
	sale.Status = domain.SaleStatusInactive

	effects := []SideEffect{
		{Name: "category-counters", Run: func(ctx context.Context) error {
			converted, err := s.normalizer.ToAccountingCurrency(sale.CurrentFinalPrice, sale.Currency)
			if err != nil {
				return err
			}
			return s.counters.OnSaleStateChanged(ctx, sale.CategoryID, -converted, -1)
		}},
		{Name: "cleanup-notifications", Run: func(ctx context.Context) error {
			s.notifier.CleanupForOwner(ctx, saleID)
			return nil
		}},
	}
	if occupiedSlot {
		effects = append(effects, s.occupancyEffects(sale, -1)...)
	}
	runSideEffects(ctx, "sale.cut", effects)

	return sale, nil
}

func (s *Service) DeleteSale(ctx context.Context, saleID string, deleteLedger bool) error {
	sale, err := s.getSale(ctx, saleID)
	if err != nil {
		return err
	}

	if err := s.saleRepo.Delete(ctx, saleID); err != nil {
		return err
	}

	owner := domain.OwnerRef{Type: domain.OwnerTypeSale, ID: saleID}

	var effects []SideEffect
	if sale.Status == domain.SaleStatusActive {
		effects = append(effects, SideEffect{Name: "category-counters", Run: func(ctx context.Context) error {
			converted, err := s.normalizer.ToAccountingCurrency(sale.CurrentFinalPrice, sale.Currency)
			if err != nil {
				return err
			}
			return s.counters.OnSaleStateChanged(ctx, sale.CategoryID, -converted, -1)
		}})
	}
	if sale.OccupiesSlot() {
		effects = append(effects, s.occupancyEffects(sale, -1)...)
	}
	if deleteLedger {
		effects = append(effects, SideEffect{Name: "delete-ledger", Run: func(ctx context.Context) error {
			_, err := s.ledger.DeleteAll(ctx, owner)
			return err
		}})
	}
	effects = append(effects, SideEffect{Name: "cleanup-notifications", Run: func(ctx context.Context) error {
		s.notifier.CleanupForOwner(ctx, saleID)
		return nil
	}})
	runSideEffects(ctx, "sale.delete", effects)

	return nil
}

func (s *Service) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	return s.getSale(ctx, saleID)
}

func (s *Service) ListSales(ctx context.Context, serviceID string) ([]*domain.Sale, error) {
	if serviceID != "" {
		return s.saleRepo.ListByService(ctx, serviceID)
	}

	return s.saleRepo.List(ctx)
}

func (s *Service) ListSalePayments(ctx context.Context, saleID string) ([]*domain.Payment, error) {
	if _, err := s.getSale(ctx, saleID); err != nil {
		return nil, err
	}

	return s.ledger.ListByOwner(ctx, domain.OwnerRef{Type: domain.OwnerTypeSale, ID: saleID})
}

func (s *Service) getSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.NewNotFoundError(firestoredb.CollectionSales, saleID)
	}

	return sale, nil
}

// checkProfileAvailable valida a vaga antes de criar a venda: precisa haver
// vaga livre e o número de perfil não pode estar ocupado por outra venda ativa
func (s *Service) checkProfileAvailable(ctx context.Context, service *domain.Service, profileNumber int) error {
	if profileNumber < 1 || int64(profileNumber) > service.ProfileSlotsTotal {
		return domain.NewValidationError("profile_number", "fora do intervalo de vagas do serviço")
	}

	if service.FreeSlots() == 0 {
		return ErrNoFreeSlots
	}

	siblings, err := s.saleRepo.ListByService(ctx, service.ID)
	if err != nil {
		return err
	}

	for _, sibling := range siblings {
		if sibling.OccupiesSlot() && *sibling.ProfileNumber == profileNumber {
			return ErrProfileTaken
		}
	}

	return nil
}

// occupancyEffects ajusta o contador de vagas do serviço e o total de vagas
// livres da categoria quando uma venda ocupa (+1) ou libera (-1) uma vaga
func (s *Service) occupancyEffects(sale *domain.Sale, delta int64) []SideEffect {
	return []SideEffect{
		{Name: "service-occupancy", Run: func(ctx context.Context) error {
			return s.serviceRepo.ApplyIncrements(ctx, sale.ServiceID, []firestoredb.Increment{
				{Field: domain.ServiceFieldProfileSlotsOccupied, Delta: delta},
			})
		}},
		{Name: "category-occupancy", Run: func(ctx context.Context) error {
			return s.counters.OnProfileOccupancyChanged(ctx, sale.CategoryID, delta)
		}},
	}
}

// mirrorSaleEntry espelha os valores do lançamento nos campos current* da
// venda
func (s *Service) mirrorSaleEntry(ctx context.Context, sale *domain.Sale, entry *domain.Payment) error {
	if err := s.saleRepo.Update(ctx, sale.ID, map[string]interface{}{
		"currentPrice":      entry.Amount,
		"currentDiscount":   entry.Discount,
		"currentFinalPrice": entry.FinalAmount,
		"currency":          entry.Currency,
		"billingCycle":      string(entry.BillingCycle),
		"currentStartDate":  entry.StartDate,
		"currentExpiryDate": entry.ExpiryDate,
	}); err != nil {
		return err
	}

	sale.CurrentPrice = entry.Amount
	sale.CurrentDiscount = entry.Discount
	sale.CurrentFinalPrice = entry.FinalAmount
	sale.Currency = entry.Currency
	sale.BillingCycle = entry.BillingCycle
	sale.CurrentStartDate = entry.StartDate
	sale.CurrentExpiryDate = entry.ExpiryDate

	return nil
}

// revenueDelta registra na categoria a diferença (novo − antigo) em moeda
// contábil, mantendo a soma de receita correta sem reescanear o razão
func (s *Service) revenueDelta(categoryID string, newAmount float64, newCurrency string, oldAmount float64, oldCurrency string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		newConverted, err := s.normalizer.ToAccountingCurrency(newAmount, newCurrency)
		if err != nil {
			return err
		}

		oldConverted, err := s.normalizer.ToAccountingCurrency(oldAmount, oldCurrency)
		if err != nil {
			return err
		}

		return s.counters.OnSaleStateChanged(ctx, categoryID, newConverted-oldConverted, 0)
	}
}
