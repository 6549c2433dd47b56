package domain

import "time"

// Service é uma conta comprada em uma plataforma que expõe
// ProfileSlotsTotal vagas vendáveis (1 quando é vendida como conta completa).
//
// CurrentStartDate/CurrentExpiryDate e Cost espelham sempre o lançamento mais
// recente do razão de pagamentos (service_payments); ProfileSlotsOccupied é
// desnormalizado e deve ser igual ao número de vendas ativas com perfil
// atribuído apontando para este serviço.
type Service struct {
	ID                   string       `firestore:"-" json:"id"`
	CategoryID           string       `firestore:"categoryId" json:"category_id"`
	Name                 string       `firestore:"name" json:"name"`
	AccountEmail         string       `firestore:"accountEmail" json:"account_email"`
	Cost                 float64      `firestore:"cost" json:"cost"`
	Currency             string       `firestore:"currency" json:"currency"`
	BillingCycle         BillingCycle `firestore:"billingCycle" json:"billing_cycle"`
	PaymentMethod        string       `firestore:"paymentMethod" json:"payment_method"`
	CurrentStartDate     time.Time    `firestore:"currentStartDate" json:"current_start_date"`
	CurrentExpiryDate    time.Time    `firestore:"currentExpiryDate" json:"current_expiry_date"`
	ProfileSlotsTotal    int64        `firestore:"profileSlotsTotal" json:"profile_slots_total"`
	ProfileSlotsOccupied int64        `firestore:"profileSlotsOccupied" json:"profile_slots_occupied"`
	// ExpenseTotal acumula tudo que já foi pago pelo serviço; usado para
	// reverter a contribuição do serviço em Category.TotalExpense na exclusão.
	ExpenseTotal float64   `firestore:"expenseTotal" json:"expense_total"`
	Active       bool      `firestore:"active" json:"active"`
	CreatedAt    time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
	UpdatedAt    time.Time `firestore:"updatedAt,serverTimestamp" json:"updated_at"`
}

// FreeSlots retorna o número de vagas livres do serviço, nunca negativo
func (s *Service) FreeSlots() int64 {
	free := s.ProfileSlotsTotal - s.ProfileSlotsOccupied
	if free < 0 {
		return 0
	}
	return free
}

const (
	ServiceFieldProfileSlotsOccupied = "profileSlotsOccupied"
	ServiceFieldExpenseTotal         = "expenseTotal"
)
