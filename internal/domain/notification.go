package domain

import "time"

// NotificationPriority é a urgência derivada dos dias restantes até o
// vencimento do dono da notificação
type NotificationPriority string

const (
	NotificationPriorityCritical NotificationPriority = "critical"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityMedium   NotificationPriority = "medium"
	NotificationPriorityLow      NotificationPriority = "low"
)

// Notification é estado derivado de vencimento, com chave pelo id do dono
// (serviço ou venda). Os campos de exibição são desnormalizados do dono no
// momento da materialização; a prioridade nunca é confiada para decisões de
// contagem — é sempre re-derivada da data de vencimento atual do dono.
type Notification struct {
	ID        string    `firestore:"-" json:"id"`
	OwnerID   string    `firestore:"ownerId" json:"owner_id"`
	OwnerType OwnerType `firestore:"ownerType" json:"owner_type"`
	Read      bool      `firestore:"read" json:"read"`
	// Pinned (resaltada) força a exibição com urgência máxima, mas é um flag
	// puramente aditivo: não altera os dias restantes nem a prioridade derivada
	Pinned        bool                 `firestore:"pinned" json:"pinned"`
	Priority      NotificationPriority `firestore:"priority" json:"priority"`
	DaysRemaining int                  `firestore:"daysRemaining" json:"days_remaining"`
	ClientName    string               `firestore:"clientName" json:"client_name"`
	ServiceName   string               `firestore:"serviceName" json:"service_name"`
	Currency      string               `firestore:"currency" json:"currency"`
	Amount        float64              `firestore:"amount" json:"amount"`
	ExpiryDate    time.Time            `firestore:"expiryDate" json:"expiry_date"`
	CreatedAt     time.Time            `firestore:"createdAt,serverTimestamp" json:"created_at"`
	UpdatedAt     time.Time            `firestore:"updatedAt,serverTimestamp" json:"updated_at"`
}
