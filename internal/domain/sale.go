package domain

import "time"

// SaleStatus indica se a venda está ativa (ocupando vaga e contando nos
// agregados) ou inativa (cortada, sem contribuição nos contadores)
type SaleStatus string

const (
	SaleStatusActive   SaleStatus = "active"
	SaleStatusInactive SaleStatus = "inactive"
)

// Sale é o aluguel de uma vaga de um serviço (ou da conta completa) para um
// cliente. Os campos Current* espelham o lançamento mais recente do razão de
// pagamentos da venda (sale_payments).
type Sale struct {
	ID         string `firestore:"-" json:"id"`
	ClientID   string `firestore:"clientId" json:"client_id"`
	ClientName string `firestore:"clientName" json:"client_name"`
	ServiceID  string `firestore:"serviceId" json:"service_id"`
	// CategoryID é desnormalizado da categoria do serviço para permitir os
	// incrementos de agregados sem uma leitura extra
	CategoryID string `firestore:"categoryId" json:"category_id"`
	// ProfileNumber é o número do perfil atribuído dentro do serviço; nil
	// quando a venda é da conta completa ou ainda não tem perfil
	ProfileNumber     *int         `firestore:"profileNumber" json:"profile_number"`
	Status            SaleStatus   `firestore:"status" json:"status"`
	CurrentPrice      float64      `firestore:"currentPrice" json:"current_price"`
	CurrentDiscount   float64      `firestore:"currentDiscount" json:"current_discount"`
	CurrentFinalPrice float64      `firestore:"currentFinalPrice" json:"current_final_price"`
	Currency          string       `firestore:"currency" json:"currency"`
	BillingCycle      BillingCycle `firestore:"billingCycle" json:"billing_cycle"`
	CurrentStartDate  time.Time    `firestore:"currentStartDate" json:"current_start_date"`
	CurrentExpiryDate time.Time    `firestore:"currentExpiryDate" json:"current_expiry_date"`
	CreatedAt         time.Time    `firestore:"createdAt,serverTimestamp" json:"created_at"`
	UpdatedAt         time.Time    `firestore:"updatedAt,serverTimestamp" json:"updated_at"`
}

// OccupiesSlot indica se a venda conta para o ProfileSlotsOccupied do serviço
func (s *Sale) OccupiesSlot() bool {
	return s.Status == SaleStatusActive && s.ProfileNumber != nil
}
