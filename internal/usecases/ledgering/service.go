package ledgering

import (
	"context"
	"fmt"
	"time"

	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// Ledger é o contrato do razão de pagamentos consumido pela máquina de
// estados de renovação
type Ledger interface {
	AppendInitial(ctx context.Context, owner domain.OwnerRef, input PaymentInput) (*domain.Payment, error)
	AppendRenewal(ctx context.Context, owner domain.OwnerRef, input PaymentInput) (*domain.Payment, error)
	// EditLatest corrige o lançamento mais recente e informa se, depois da
	// reordenação, o lançamento editado ainda é o mais recente
	EditLatest(ctx context.Context, owner domain.OwnerRef, patch PaymentPatch) (*domain.Payment, bool, error)
	// DeleteLatest remove o lançamento mais recente e retorna também o novo
	// mais recente (nil quando o razão ficou vazio)
	DeleteLatest(ctx context.Context, owner domain.OwnerRef) (deleted *domain.Payment, newLatest *domain.Payment, err error)
	ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]*domain.Payment, error)
	// DeleteAll remove todo o histórico do dono; usado apenas na exclusão do
	// próprio dono quando solicitada com o histórico
	DeleteAll(ctx context.Context, owner domain.OwnerRef) (int, error)
}

type Service struct {
	servicePayments repository.PaymentRepository
	salePayments    repository.PaymentRepository
}

func NewService(
	servicePayments repository.PaymentRepository,
	salePayments repository.PaymentRepository,
) *Service {
	return &Service{
		servicePayments: servicePayments,
		salePayments:    salePayments,
	}
}

func (s *Service) repoFor(owner domain.OwnerRef) (repository.PaymentRepository, string) {
	if owner.Type == domain.OwnerTypeSale {
		return s.salePayments, firestoredb.CollectionSalePayments
	}
	return s.servicePayments, firestoredb.CollectionServicePayments
}

// AppendInitial grava o lançamento inicial do dono. Chamado exatamente uma
// vez, na criação do serviço ou da venda.
func (s *Service) AppendInitial(ctx context.Context, owner domain.OwnerRef, input PaymentInput) (*domain.Payment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	repo, _ := s.repoFor(owner)

	payment := s.buildPayment(owner, input)
	payment.IsInitial = true
	payment.Label = "Pagamento inicial"

	if _, err := repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// AppendRenewal grava um novo lançamento de renovação com o rótulo sequencial
// "Renovação #N". Não toca nos campos current* do dono — isso é papel da
// máquina de estados de renovação.
func (s *Service) AppendRenewal(ctx context.Context, owner domain.OwnerRef, input PaymentInput) (*domain.Payment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	repo, _ := s.repoFor(owner)

	entries, err := repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	renewals := 0
	for _, entry := range entries {
		if !entry.IsInitial {
			renewals++
		}
	}

	payment := s.buildPayment(owner, input)
	payment.Label = fmt.Sprintf("Renovação #%d", renewals+1)

	if _, err := repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *Service) EditLatest(ctx context.Context, owner domain.OwnerRef, patch PaymentPatch) (*domain.Payment, bool, error) {
	repo, collection := s.repoFor(owner)

	entries, err := repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, false, err
	}

	latest := Latest(entries)
	if latest == nil {
		return nil, false, domain.NewNotFoundError(collection, owner.ID)
	}

	edited := *latest
	storePatch := applyPatch(&edited, patch)
	if len(storePatch) == 0 {
		return &edited, true, nil
	}

	if err := repo.Update(ctx, latest.ID, storePatch); err != nil {
		return nil, false, err
	}

	// Re-deriva "qual é o mais recente" depois da edição: corrigir datas pode
	// ter movido o lançamento editado para trás de outro
	entries, err = repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, false, err
	}

	current := Latest(entries)
	stillLatest := current != nil && current.ID == edited.ID

	return &edited, stillLatest, nil
}

func (s *Service) DeleteLatest(ctx context.Context, owner domain.OwnerRef) (*domain.Payment, *domain.Payment, error) {
	repo, collection := s.repoFor(owner)

	entries, err := repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, nil, err
	}

	latest := Latest(entries)
	if latest == nil {
		return nil, nil, domain.NewNotFoundError(collection, owner.ID)
	}

	if err := repo.Delete(ctx, latest.ID); err != nil {
		return nil, nil, err
	}

	remaining := make([]*domain.Payment, 0, len(entries)-1)
	for _, entry := range entries {
		if entry.ID != latest.ID {
			remaining = append(remaining, entry)
		}
	}

	return latest, Latest(remaining), nil
}

func (s *Service) ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]*domain.Payment, error) {
	repo, _ := s.repoFor(owner)

	entries, err := repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	SortEntries(entries)
	return entries, nil
}

func (s *Service) DeleteAll(ctx context.Context, owner domain.OwnerRef) (int, error) {
	repo, _ := s.repoFor(owner)
	return repo.DeleteByOwner(ctx, owner.ID)
}

func (s *Service) buildPayment(owner domain.OwnerRef, input PaymentInput) *domain.Payment {
	return &domain.Payment{
		OwnerID:       owner.ID,
		Amount:        input.Amount,
		Discount:      input.Discount,
		FinalAmount:   input.Amount - input.Discount,
		Currency:      input.Currency,
		BillingCycle:  input.BillingCycle,
		StartDate:     input.StartDate,
		ExpiryDate:    input.ExpiryDate,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
		CreatedAt:     time.Now(),
	}
}

// applyPatch aplica a correção no lançamento em memória e devolve o patch
// parcial correspondente para o store
func applyPatch(payment *domain.Payment, patch PaymentPatch) map[string]interface{} {
	storePatch := make(map[string]interface{})

	if patch.Amount != nil {
		payment.Amount = *patch.Amount
		storePatch["amount"] = *patch.Amount
	}
	if patch.Discount != nil {
		payment.Discount = *patch.Discount
		storePatch["discount"] = *patch.Discount
	}
	if patch.Amount != nil || patch.Discount != nil {
		payment.FinalAmount = payment.Amount - payment.Discount
		storePatch["finalAmount"] = payment.FinalAmount
	}
	if patch.Currency != nil {
		payment.Currency = *patch.Currency
		storePatch["currency"] = *patch.Currency
	}
	if patch.BillingCycle != nil {
		payment.BillingCycle = *patch.BillingCycle
		storePatch["billingCycle"] = string(*patch.BillingCycle)
	}
	if patch.StartDate != nil {
		payment.StartDate = *patch.StartDate
		storePatch["startDate"] = *patch.StartDate
	}
	if patch.ExpiryDate != nil {
		payment.ExpiryDate = *patch.ExpiryDate
		storePatch["expiryDate"] = *patch.ExpiryDate
	}
	if patch.PaymentMethod != nil {
		payment.PaymentMethod = *patch.PaymentMethod
		storePatch["paymentMethod"] = *patch.PaymentMethod
	}
	if patch.Notes != nil {
		payment.Notes = *patch.Notes
		storePatch["notes"] = *patch.Notes
	}

	return storePatch
}
