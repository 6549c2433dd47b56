package domain

import "time"

// PlanKind indica se o plano vende perfis individuais ou a conta completa
type PlanKind string

const (
	PlanKindProfile PlanKind = "profile"
	PlanKindAccount PlanKind = "account"
)

// BillingCycle define o ciclo de cobrança de um plano, serviço ou venda
type BillingCycle string

const (
	BillingCycleMonthly    BillingCycle = "monthly"
	BillingCycleQuarterly  BillingCycle = "quarterly"
	BillingCycleSemiannual BillingCycle = "semiannual"
	BillingCycleAnnual     BillingCycle = "annual"
)

// Months retorna a duração do ciclo em meses
func (c BillingCycle) Months() int {
	switch c {
	case BillingCycleQuarterly:
		return 3
	case BillingCycleSemiannual:
		return 6
	case BillingCycleAnnual:
		return 12
	default:
		return 1
	}
}

// Valid indica se o ciclo de cobrança é um dos valores conhecidos
func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleSemiannual, BillingCycleAnnual:
		return true
	}
	return false
}

// Plan é uma combinação de preço, ciclo de cobrança e tipo de plano vendida
// dentro de uma categoria
type Plan struct {
	Name         string       `firestore:"name" json:"name"`
	Price        float64      `firestore:"price" json:"price"`
	Currency     string       `firestore:"currency" json:"currency"`
	BillingCycle BillingCycle `firestore:"billingCycle" json:"billing_cycle"`
	Kind         PlanKind     `firestore:"kind" json:"kind"`
}

// Category é uma linha de produto (ex.: "Streaming"). Os campos Total* e
// FreeProfileSlotsTotal são agregados desnormalizados: apenas o gerenciador de
// contadores (aggregating) e o job de reconciliação podem escrevê-los.
type Category struct {
	ID                    string    `firestore:"-" json:"id"`
	Name                  string    `firestore:"name" json:"name"`
	Plans                 []Plan    `firestore:"plans" json:"plans"`
	Active                bool      `firestore:"active" json:"active"`
	TotalServices         int64     `firestore:"totalServices" json:"total_services"`
	ActiveServices        int64     `firestore:"activeServices" json:"active_services"`
	FreeProfileSlotsTotal int64     `firestore:"freeProfileSlotsTotal" json:"free_profile_slots_total"`
	TotalSales            int64     `firestore:"totalSales" json:"total_sales"`
	TotalRevenue          float64   `firestore:"totalRevenue" json:"total_revenue"`
	TotalExpense          float64   `firestore:"totalExpense" json:"total_expense"`
	CreatedAt             time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
	UpdatedAt             time.Time `firestore:"updatedAt,serverTimestamp" json:"updated_at"`
}

// Campos de agregados da categoria, usados nos incrementos atômicos
const (
	CategoryFieldTotalServices         = "totalServices"
	CategoryFieldActiveServices        = "activeServices"
	CategoryFieldFreeProfileSlotsTotal = "freeProfileSlotsTotal"
	CategoryFieldTotalSales            = "totalSales"
	CategoryFieldTotalRevenue          = "totalRevenue"
	CategoryFieldTotalExpense          = "totalExpense"
)
