package ledgering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name     string
		entries  []*domain.Payment
		expected string
	}{
		{
			name:     "Razão vazio retorna nil",
			entries:  nil,
			expected: "",
		},
		{
			name: "Lançamento com data de início mais recente vence",
			entries: []*domain.Payment{
				{ID: "P1", StartDate: date(2026, 1, 1), CreatedAt: date(2026, 1, 1)},
				{ID: "P2", StartDate: date(2026, 3, 1), CreatedAt: date(2026, 3, 1)},
				{ID: "P3", StartDate: date(2026, 2, 1), CreatedAt: date(2026, 2, 1)},
			},
			expected: "P2",
		},
		{
			name: "Empate na data de início desempata pela data de criação",
			entries: []*domain.Payment{
				{ID: "P1", StartDate: date(2026, 2, 1), CreatedAt: date(2026, 2, 1)},
				{ID: "P2", StartDate: date(2026, 2, 1), CreatedAt: date(2026, 2, 2)},
			},
			expected: "P2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest := Latest(tt.entries)

			if tt.expected == "" {
				assert.Nil(t, latest)
				return
			}

			assert.NotNil(t, latest)
			assert.Equal(t, tt.expected, latest.ID)
		})
	}
}

func TestLatest_NaoAlteraAOrdemDoSliceOriginal(t *testing.T) {
	entries := []*domain.Payment{
		{ID: "P1", StartDate: date(2026, 1, 1)},
		{ID: "P2", StartDate: date(2026, 3, 1)},
	}

	latest := Latest(entries)

	assert.Equal(t, "P2", latest.ID)
	assert.Equal(t, "P1", entries[0].ID)
	assert.Equal(t, "P2", entries[1].ID)
}

func TestSortEntries(t *testing.T) {
	entries := []*domain.Payment{
		{ID: "P1", StartDate: date(2026, 1, 1)},
		{ID: "P3", StartDate: date(2026, 3, 1)},
		{ID: "P2", StartDate: date(2026, 2, 1)},
	}

	SortEntries(entries)

	assert.Equal(t, "P3", entries[0].ID)
	assert.Equal(t, "P2", entries[1].ID)
	assert.Equal(t, "P1", entries[2].ID)
}

func TestPaymentInputValidate(t *testing.T) {
	valid := PaymentInput{
		Amount:       100,
		Discount:     10,
		Currency:     "BRL",
		BillingCycle: domain.BillingCycleMonthly,
		StartDate:    date(2026, 1, 1),
		ExpiryDate:   date(2026, 2, 1),
	}

	tests := []struct {
		name    string
		mutate  func(input *PaymentInput)
		wantErr bool
	}{
		{
			name:    "Lançamento válido",
			mutate:  func(input *PaymentInput) {},
			wantErr: false,
		},
		{
			name:    "Valor negativo é rejeitado",
			mutate:  func(input *PaymentInput) { input.Amount = -1 },
			wantErr: true,
		},
		{
			name:    "Desconto maior que o valor é rejeitado",
			mutate:  func(input *PaymentInput) { input.Discount = 200 },
			wantErr: true,
		},
		{
			name:    "Moeda obrigatória",
			mutate:  func(input *PaymentInput) { input.Currency = "" },
			wantErr: true,
		},
		{
			name:    "Ciclo de cobrança desconhecido é rejeitado",
			mutate:  func(input *PaymentInput) { input.BillingCycle = "weekly" },
			wantErr: true,
		},
		{
			name: "Vencimento antes do início é rejeitado",
			mutate: func(input *PaymentInput) {
				input.ExpiryDate = date(2025, 12, 1)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)

			err := input.validate()

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
