package domain

import "time"

// OwnerType identifica o tipo de entidade dona de um razão de pagamentos
type OwnerType string

const (
	OwnerTypeService OwnerType = "service"
	OwnerTypeSale    OwnerType = "sale"
)

// OwnerRef referencia o dono de um razão de pagamentos (serviço ou venda)
type OwnerRef struct {
	Type OwnerType
	ID   string
}

// Payment é um lançamento imutável do histórico de pagamentos de um serviço
// ou de uma venda. Apenas o lançamento mais recente pode ser corrigido ou
// removido; todos os demais são permanentes.
//
// A ordenação do razão é sempre por StartDate decrescente (CreatedAt como
// desempate), recalculada a cada operação — nunca um ponteiro para "o último
// gravado", porque uma edição de datas pode reordenar os lançamentos.
type Payment struct {
	ID            string       `firestore:"-" json:"id"`
	OwnerID       string       `firestore:"ownerId" json:"owner_id"`
	Label         string       `firestore:"label" json:"label"`
	Amount        float64      `firestore:"amount" json:"amount"`
	Discount      float64      `firestore:"discount" json:"discount"`
	FinalAmount   float64      `firestore:"finalAmount" json:"final_amount"`
	Currency      string       `firestore:"currency" json:"currency"`
	BillingCycle  BillingCycle `firestore:"billingCycle" json:"billing_cycle"`
	StartDate     time.Time    `firestore:"startDate" json:"start_date"`
	ExpiryDate    time.Time    `firestore:"expiryDate" json:"expiry_date"`
	PaymentMethod string       `firestore:"paymentMethod" json:"payment_method"`
	IsInitial     bool         `firestore:"isInitial" json:"is_initial"`
	Notes         string       `firestore:"notes" json:"notes"`
	CreatedAt     time.Time    `firestore:"createdAt,serverTimestamp" json:"created_at"`
}
