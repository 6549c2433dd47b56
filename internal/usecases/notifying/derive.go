// Package notifying deriva e mantém o estado de notificações de vencimento
// de serviços e vendas.
package notifying

import (
	"math"
	"time"

	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// DaysRemaining retorna os dias até o vencimento, arredondando para cima:
// faltando qualquer fração de dia ainda conta como um dia restante
func DaysRemaining(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// Derive calcula os dias restantes e a prioridade da notificação a partir da
// data de vencimento atual do dono. É uma função pura: o engine sempre
// re-deriva daqui, nunca confia em uma prioridade cacheada.
func Derive(ownerType domain.OwnerType, expiry, now time.Time) (int, domain.NotificationPriority) {
	days := DaysRemaining(expiry, now)

	if ownerType == domain.OwnerTypeSale {
		return days, salePriority(days)
	}

	return days, servicePriority(days)
}

func servicePriority(days int) domain.NotificationPriority {
	switch {
	case days <= 3: // vencido ou vencendo em até 3 dias
		return domain.NotificationPriorityCritical
	case days <= 7:
		return domain.NotificationPriorityHigh
	case days <= 30:
		return domain.NotificationPriorityMedium
	default:
		return domain.NotificationPriorityLow
	}
}

// salePriority só é crítica com a venda vencida; qualquer margem positiva
// fica nas faixas não-críticas
func salePriority(days int) domain.NotificationPriority {
	switch {
	case days <= 0:
		return domain.NotificationPriorityCritical
	case days <= 7:
		return domain.NotificationPriorityHigh
	case days <= 30:
		return domain.NotificationPriorityMedium
	default:
		return domain.NotificationPriorityLow
	}
}
