// Package aggregating mantém os agregados desnormalizados da categoria
// (contagens de serviços, vagas livres, receita, despesa) em passo com as
// mutações das entidades folha, usando apenas incrementos atômicos e
// comutativos — nunca leitura-modificação-escrita, nunca transações.
//
// Toda chamada é disparada depois que a escrita primária já aconteceu: uma
// falha aqui é logada e absorvida, nunca propagada nem recuada. O job de
// reconciliação é o mecanismo de correção para qualquer deriva resultante.
package aggregating

import (
	"context"

	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// CounterManager é o contrato consumido pela máquina de estados de renovação
// e pelos fluxos de ciclo de vida de serviços e vendas
type CounterManager interface {
	OnServiceCreated(ctx context.Context, categoryID string, profileSlotsTotal int64) error
	OnServiceActivationChanged(ctx context.Context, categoryID string, nowActive bool, freeSlotsAtTransition int64) error
	OnProfileOccupancyChanged(ctx context.Context, categoryID string, delta int64) error
	OnServiceDeleted(ctx context.Context, categoryID string, service *domain.Service) error
	OnSaleCreated(ctx context.Context, categoryID string, amount float64) error
	OnSaleStateChanged(ctx context.Context, categoryID string, amountDelta float64, saleCountDelta int64) error
	// OnExpenseRecorded recebe o valor já convertido para a moeda contábil;
	// o gerenciador de contadores nunca faz matemática de câmbio
	OnExpenseRecorded(ctx context.Context, categoryID string, amount float64) error
}

type Service struct {
	categoryRepo repository.CategoryRepository
}

func NewService(categoryRepo repository.CategoryRepository) *Service {
	return &Service{
		categoryRepo: categoryRepo,
	}
}

func (s *Service) OnServiceCreated(ctx context.Context, categoryID string, profileSlotsTotal int64) error {
	return s.categoryRepo.ApplyIncrements(ctx, categoryID, []firestoredb.Increment{
		{Field: domain.CategoryFieldTotalServices, Delta: int64(1)},
		{Field: domain.CategoryFieldActiveServices, Delta: int64(1)},
		{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: profileSlotsTotal},
	})
}

func (s *Service) OnServiceActivationChanged(ctx context.Context, categoryID string, nowActive bool, freeSlotsAtTransition int64) error {
	activeDelta := int64(1)
	slotsDelta := freeSlotsAtTransition
	if !nowActive {
		activeDelta = -1
		slotsDelta = -freeSlotsAtTransition
	}

	return s.categoryRepo.ApplyIncrements(ctx, categoryID, []firestoredb.Increment{
		{Field: domain.CategoryFieldActiveServices, Delta: activeDelta},
		{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: slotsDelta},
	})
}

// OnProfileOccupancyChanged ajusta o total de vagas livres: ocupar uma vaga
// (delta positivo) remove do conjunto livre
func (s *Service) OnProfileOccupancyChanged(ctx context.Context, categoryID string, delta int64) error {
	if delta == 0 {
		return nil
	}

	return s.categoryRepo.ApplyIncrements(ctx, categoryID, []firestoredb.Increment{
		{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: -delta},
	})
}

// OnServiceDeleted reverte a contribuição do serviço nos agregados usando os
// últimos valores conhecidos do documento
func (s *Service) OnServiceDeleted(ctx context.Context, categoryID string, service *domain.Service) error {
	increments := []firestoredb.Increment{
		{Field: domain.CategoryFieldTotalServices, Delta: int64(-1)},
	}

	if service.Active {
		increments = append(increments,
			firestoredb.Increment{Field: domain.CategoryFieldActiveServices, Delta: int64(-1)},
			firestoredb.Increment{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: -service.FreeSlots()},
		)
	}

	if service.ExpenseTotal != 0 {
		increments = append(increments,
			firestoredb.Increment{Field: domain.CategoryFieldTotalExpense, Delta: -service.ExpenseTotal},
		)
	}

	return s.categoryRepo.ApplyIncrements(ctx, categoryID, increments)
}

func (s *Service) OnSaleCreated(ctx context.Context, categoryID string, amount float64) error {
	return s.categoryRepo.ApplyIncrements(ctx, categoryID, []firestoredb.Increment{
		{Field: domain.CategoryFieldTotalSales, Delta: int64(1)},
		{Field: domain.CategoryFieldTotalRevenue, Delta: amount},
	})
}

func (s *Service) OnSaleStateChanged(ctx context.Context, categoryID string, amountDelta float64, saleCountDelta int64) error {
	increments := make([]firestoredb.Increment, 0, 2)

	if saleCountDelta != 0 {
		increments = append(increments, firestoredb.Increment{
			Field: domain.CategoryFieldTotalSales, Delta: saleCountDelta,
		})
	}
	if amountDelta != 0 {
		increments = append(increments, firestoredb.Increment{
			Field: domain.CategoryFieldTotalRevenue, Delta: amountDelta,
		})
	}

	return s.categoryRepo.ApplyIncrements(ctx, categoryID, increments)
}

func (s *Service) OnExpenseRecorded(ctx context.Context, categoryID string, amount float64) error {
	if amount == 0 {
		return nil
	}

	return s.categoryRepo.ApplyIncrements(ctx, categoryID, []firestoredb.Increment{
		{Field: domain.CategoryFieldTotalExpense, Delta: amount},
	})
}
