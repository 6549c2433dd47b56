package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/notifying"
	"github.com/vfg2006/subscription-manager-api/pkg/apiErrors"
)

func ListNotifications(service notifying.Notifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notifications, err := service.List(r.Context(), time.Now())
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar notificações")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrNotificationNotFound)
			return
		}

		writeJSON(w, http.StatusOK, notifications)
	})
}

// ownerFromRequest monta a referência do dono a partir dos parâmetros da rota
func ownerFromRequest(r *http.Request) (domain.OwnerRef, bool) {
	params := httprouter.ParamsFromContext(r.Context())
	ownerType := domain.OwnerType(params.ByName("owner_type"))

	if ownerType != domain.OwnerTypeService && ownerType != domain.OwnerTypeSale {
		return domain.OwnerRef{}, false
	}

	return domain.OwnerRef{Type: ownerType, ID: params.ByName("owner_id")}, true
}

func ToggleNotificationRead(service notifying.Notifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de dono inválido. Valores aceitos: service, sale", nil)
			return
		}

		notification, err := service.ToggleRead(r.Context(), owner)
		if err != nil {
			logrus.WithError(err).Error("Erro ao alternar leitura da notificação")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrNotificationNotFound)
			return
		}

		writeJSON(w, http.StatusOK, notification)
	})
}

func ToggleNotificationPinned(service notifying.Notifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de dono inválido. Valores aceitos: service, sale", nil)
			return
		}

		notification, err := service.TogglePinned(r.Context(), owner)
		if err != nil {
			logrus.WithError(err).Error("Erro ao alternar fixação da notificação")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrNotificationNotFound)
			return
		}

		writeJSON(w, http.StatusOK, notification)
	})
}
