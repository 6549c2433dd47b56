// Package ledgering mantém o razão de pagamentos dos serviços e das vendas:
// um histórico imutável por dono, onde apenas o lançamento mais recente pode
// ser corrigido ou removido.
package ledgering

import (
	"sort"
	"time"

	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// PaymentInput são os dados de um novo lançamento (inicial ou renovação)
type PaymentInput struct {
	Amount        float64
	Discount      float64
	Currency      string
	BillingCycle  domain.BillingCycle
	StartDate     time.Time
	ExpiryDate    time.Time
	PaymentMethod string
	Notes         string
}

// PaymentPatch é uma correção parcial do lançamento mais recente. Campos nil
// não são alterados.
type PaymentPatch struct {
	Amount        *float64
	Discount      *float64
	Currency      *string
	BillingCycle  *domain.BillingCycle
	StartDate     *time.Time
	ExpiryDate    *time.Time
	PaymentMethod *string
	Notes         *string
}

// SortEntries ordena os lançamentos por data decrescente (data de criação
// como desempate). Toda decisão de "qual é o lançamento atual" parte desta
// ordenação, recalculada a cada operação.
func SortEntries(entries []*domain.Payment) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].StartDate.Equal(entries[j].StartDate) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].StartDate.After(entries[j].StartDate)
	})
}

// Latest retorna o lançamento logicamente mais recente, ou nil para um razão
// vazio. Nunca confie em um ponteiro guardado: uma edição de datas pode
// reordenar os lançamentos.
func Latest(entries []*domain.Payment) *domain.Payment {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]*domain.Payment, len(entries))
	copy(sorted, entries)
	SortEntries(sorted)

	return sorted[0]
}

func (p PaymentInput) validate() error {
	if p.Amount < 0 {
		return domain.NewValidationError("amount", "não pode ser negativo")
	}
	if p.Discount < 0 || p.Discount > p.Amount {
		return domain.NewValidationError("discount", "deve estar entre zero e o valor do lançamento")
	}
	if p.Currency == "" {
		return domain.NewValidationError("currency", "obrigatório")
	}
	if !p.BillingCycle.Valid() {
		return domain.NewValidationError("billing_cycle", "ciclo de cobrança desconhecido")
	}
	if p.StartDate.IsZero() || p.ExpiryDate.IsZero() {
		return domain.NewValidationError("start_date", "datas de início e vencimento são obrigatórias")
	}
	if !p.ExpiryDate.After(p.StartDate) {
		return domain.NewValidationError("expiry_date", "deve ser posterior à data de início")
	}

	return nil
}
