package renewing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/ledgering"
)

func profileNumber(n int) *int {
	return &n
}

func (f *fixture) seedService(id, categoryID string, slotsTotal, slotsOccupied int64) {
	f.services[id] = &domain.Service{
		ID:                   id,
		CategoryID:           categoryID,
		Name:                 "Netflix Premium",
		Active:               true,
		ProfileSlotsTotal:    slotsTotal,
		ProfileSlotsOccupied: slotsOccupied,
	}
}

func TestService_CreateSale(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")
	f.seedService("SRV001", "CAT001", 4, 0)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sale, err := f.manager.CreateSale(context.Background(), CreateSaleInput{
		ClientName:    "Maria",
		ServiceID:     "SRV001",
		ProfileNumber: profileNumber(1),
		Price:         30,
		Discount:      5,
		Currency:      "BRL",
		BillingCycle:  domain.BillingCycleMonthly,
		StartDate:     start,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusActive, sale.Status)
	assert.Equal(t, "CAT001", sale.CategoryID)
	assert.Equal(t, 25.0, sale.CurrentFinalPrice)

	entries := f.salePayments.listByOwner(sale.ID)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsInitial)
	assert.Equal(t, 25.0, entries[0].FinalAmount)

	deltas := f.deltas("CAT001")
	assert.Equal(t, 1.0, deltas[domain.CategoryFieldTotalSales])
	assert.Equal(t, 25.0, deltas[domain.CategoryFieldTotalRevenue])
	// A vaga ocupada sai do conjunto livre
	assert.Equal(t, -1.0, deltas[domain.CategoryFieldFreeProfileSlotsTotal])
	assert.Equal(t, int64(1), f.services["SRV001"].ProfileSlotsOccupied)
}

func TestService_CreateSale_ValidacaoDeVaga(t *testing.T) {
	tests := []struct {
		name          string
		slotsTotal    int64
		slotsOccupied int64
		existing      *domain.Sale
		profile       int
		expected      error
	}{
		{
			name:          "Serviço sem vagas livres",
			slotsTotal:    2,
			slotsOccupied: 2,
			profile:       1,
			expected:      ErrNoFreeSlots,
		},
		{
			name:          "Perfil já ocupado por outra venda ativa",
			slotsTotal:    4,
			slotsOccupied: 1,
			existing: &domain.Sale{
				ID:            "SAL900",
				ServiceID:     "SRV001",
				Status:        domain.SaleStatusActive,
				ProfileNumber: profileNumber(2),
			},
			profile:  2,
			expected: ErrProfileTaken,
		},
		{
			name:       "Perfil fora do intervalo de vagas",
			slotsTotal: 4,
			profile:    5,
			expected:   domain.ErrValidation,
		},
		{
			name:       "Perfil zero é inválido",
			slotsTotal: 4,
			profile:    0,
			expected:   domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedCategory("CAT001")
			f.seedService("SRV001", "CAT001", tt.slotsTotal, tt.slotsOccupied)
			if tt.existing != nil {
				f.sales[tt.existing.ID] = tt.existing
			}

			_, err := f.manager.CreateSale(context.Background(), CreateSaleInput{
				ClientName:    "Maria",
				ServiceID:     "SRV001",
				ProfileNumber: profileNumber(tt.profile),
				Price:         30,
				Currency:      "BRL",
				BillingCycle:  domain.BillingCycleMonthly,
			})

			assert.ErrorIs(t, err, tt.expected)
			assert.Empty(t, f.deltas("CAT001"))
		})
	}
}

func TestService_CreateSale_ContaCompletaNaoOcupaVaga(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")
	f.seedService("SRV001", "CAT001", 4, 0)

	sale, err := f.manager.CreateSale(context.Background(), CreateSaleInput{
		ClientName:   "Maria",
		ServiceID:    "SRV001",
		Price:        80,
		Currency:     "BRL",
		BillingCycle: domain.BillingCycleMonthly,
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Nil(t, sale.ProfileNumber)
	assert.Equal(t, int64(0), f.services["SRV001"].ProfileSlotsOccupied)
	assert.Equal(t, 0.0, f.deltas("CAT001")[domain.CategoryFieldFreeProfileSlotsTotal])
}

func TestService_RenewSale(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")
	f.seedService("SRV001", "CAT001", 4, 0)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sale, err := f.manager.CreateSale(context.Background(), CreateSaleInput{
		ClientName:    "Maria",
		ServiceID:     "SRV001",
		ProfileNumber: profileNumber(1),
		Price:         25,
		Currency:      "BRL",
		BillingCycle:  domain.BillingCycleMonthly,
		StartDate:     start,
	})
	require.NoError(t, err)

	sale, err = f.manager.RenewSale(context.Background(), sale.ID, RenewalInput{
		Amount:       30,
		Currency:     "BRL",
		BillingCycle: domain.BillingCycleMonthly,
		StartDate:    start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, 30.0, sale.CurrentFinalPrice)

	entries := f.salePayments.listByOwner(sale.ID)
	require.Len(t, entries, 2)

	deltas := f.deltas("CAT001")
	// Receita: 25 da criação + 5 de delta da renovação
	assert.Equal(t, 30.0, deltas[domain.CategoryFieldTotalRevenue])
	assert.Equal(t, 1.0, deltas[domain.CategoryFieldTotalSales])
	assert.Equal(t, []string{sale.ID}, f.cleanedOwners)
}

func TestService_EditLastSalePayment_NaoMaisRecenteNaoEspelha(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")
	f.seedService("SRV001", "CAT001", 4, 0)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sale, err := f.manager.CreateSale(context.Background(), CreateSaleInput{
		ClientName:    "Maria",
		ServiceID:     "SRV001",
		ProfileNumber: profileNumber(1),
		Price:         25,
		Currency:      "BRL",
		BillingCycle:  domain.BillingCycleMonthly,
		StartDate:     start,
	})
	require.NoError(t, err)

	_, err = f.manager.RenewSale(context.Background(), sale.ID, RenewalInput{
		Amount:       30,
		Currency:     "BRL",
		BillingCycle: domain.BillingCycleMonthly,
		StartDate:    start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	updatesBefore := f.saleUpdates
	revenueBefore := f.deltas("CAT001")[domain.CategoryFieldTotalRevenue]

	// A correção move a renovação para antes do lançamento inicial: ela deixa
	// de ser a mais recente e a venda não é espelhada
	movedBack := start.AddDate(0, -2, 0)
	result, err := f.manager.EditLastSalePayment(context.Background(), sale.ID, ledgering.PaymentPatch{
		StartDate: &movedBack,
	})
	require.NoError(t, err)

	assert.Equal(t, 30.0, result.CurrentFinalPrice)
	assert.Equal(t, updatesBefore, f.saleUpdates)
	assert.Equal(t, revenueBefore, f.deltas("CAT001")[domain.CategoryFieldTotalRevenue])
}

func TestService_CutSale(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")
	f.seedService("SRV001", "CAT001", 4, 0)

	sale, err := f.manager.CreateSale(context.Background(), CreateSaleInput{
		ClientName:    "Maria",
		ServiceID:     "SRV001",
		ProfileNumber: profileNumber(1),
		Price:         25,
		Currency:      "BRL",
		BillingCycle:  domain.BillingCycleMonthly,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sale, err = f.manager.CutSale(context.Background(), sale.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.SaleStatusInactive, sale.Status)
	assert.Equal(t, domain.SaleStatusInactive, f.sales[sale.ID].Status)

	deltas := f.deltas("CAT001")
	// Criação e corte se anulam
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldTotalSales])
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldTotalRevenue])
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldFreeProfileSlotsTotal])
	assert.Equal(t, int64(0), f.services["SRV001"].ProfileSlotsOccupied)
	assert.Contains(t, f.cleanedOwners, sale.ID)

	// Cortar uma venda já inativa é um no-op
	cleanupsBefore := len(f.cleanedOwners)
	_, err = f.manager.CutSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Len(t, f.cleanedOwners, cleanupsBefore)
}

func TestService_DeleteSale_LiberaVagaEExcluiHistorico(t *testing.T) {
	f := newFixture(t)
	f.seedCategory("CAT001")
	f.seedService("SRV001", "CAT001", 4, 0)

	sale, err := f.manager.CreateSale(context.Background(), CreateSaleInput{
		ClientName:    "Maria",
		ServiceID:     "SRV001",
		ProfileNumber: profileNumber(1),
		Price:         25,
		Currency:      "BRL",
		BillingCycle:  domain.BillingCycleMonthly,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = f.manager.DeleteSale(context.Background(), sale.ID, true)
	require.NoError(t, err)

	assert.NotContains(t, f.sales, sale.ID)
	assert.Empty(t, f.salePayments.listByOwner(sale.ID))
	assert.Equal(t, int64(0), f.services["SRV001"].ProfileSlotsOccupied)

	deltas := f.deltas("CAT001")
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldTotalSales])
	assert.Equal(t, 0.0, deltas[domain.CategoryFieldTotalRevenue])
	assert.Contains(t, f.cleanedOwners, sale.ID)
}
