package renewing

import (
	"context"

	"github.com/sirupsen/logrus"
)

// SideEffect é um efeito secundário não-crítico de uma operação composta:
// ajustes de contadores, limpeza de notificações, conversão e registro de
// despesa. Executa depois que a escrita primária foi confirmada; uma falha é
// registrada no log estruturado e absorvida — o efeito de negócio primário
// não é recuado e a deriva resultante é corrigida pelo job de reconciliação.
type SideEffect struct {
	Name string
	Run  func(ctx context.Context) error
}

func runSideEffects(ctx context.Context, operation string, effects []SideEffect) {
	for _, effect := range effects {
		if effect.Run == nil {
			continue
		}

		if err := effect.Run(ctx); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"operation":   operation,
				"side_effect": effect.Name,
			}).Warn("Efeito secundário falhou; deriva será corrigida pela reconciliação")
		}
	}
}
