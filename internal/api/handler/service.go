package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/renewing"
	"github.com/vfg2006/subscription-manager-api/pkg/apiErrors"
)

type createServiceRequest struct {
	CategoryID        string  `json:"category_id"`
	Name              string  `json:"name"`
	AccountEmail      string  `json:"account_email"`
	Cost              float64 `json:"cost"`
	Currency          string  `json:"currency"`
	BillingCycle      string  `json:"billing_cycle"`
	PaymentMethod     string  `json:"payment_method"`
	StartDate         string  `json:"start_date"`
	ExpiryDate        string  `json:"expiry_date"`
	ProfileSlotsTotal int64   `json:"profile_slots_total"`
}

func CreateService(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidDate, "Data de início inválida", nil)
			return
		}
		expiry, err := parseDate(req.ExpiryDate)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidDate, "Data de vencimento inválida", nil)
			return
		}

		created, err := service.CreateService(r.Context(), renewing.CreateServiceInput{
			CategoryID:        req.CategoryID,
			Name:              req.Name,
			AccountEmail:      req.AccountEmail,
			Cost:              req.Cost,
			Currency:          req.Currency,
			BillingCycle:      domain.BillingCycle(req.BillingCycle),
			PaymentMethod:     req.PaymentMethod,
			StartDate:         start,
			ExpiryDate:        expiry,
			ProfileSlotsTotal: req.ProfileSlotsTotal,
		})
		if err != nil {
			logrus.WithError(err).Error("Erro ao criar serviço")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrCategoryNotFound)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	})
}

func ListServices(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categoryID := r.URL.Query().Get("category_id")

		services, err := service.ListServices(r.Context(), categoryID)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar serviços")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrServiceNotFound)
			return
		}

		writeJSON(w, http.StatusOK, services)
	})
}

func GetService(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		found, err := service.GetService(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err, apiErrors.ErrServiceNotFound)
			return
		}

		writeJSON(w, http.StatusOK, found)
	})
}

func RenewService(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		input, err := req.toRenewalInput()
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidDate, "Data inválida no lançamento", nil)
			return
		}

		renewed, err := service.RenewService(r.Context(), id, input)
		if err != nil {
			logrus.WithError(err).Error("Erro ao renovar serviço")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrServiceNotFound)
			return
		}

		writeJSON(w, http.StatusOK, renewed)
	})
}

func EditLastServicePayment(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req paymentPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		patch, err := req.toPatch()
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidDate, "Data inválida na correção", nil)
			return
		}

		updated, err := service.EditLastServicePayment(r.Context(), id, patch)
		if err != nil {
			logrus.WithError(err).Error("Erro ao corrigir último pagamento do serviço")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrPaymentNotFound)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	})
}

func DeleteLastServicePayment(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		updated, err := service.DeleteLastServicePayment(r.Context(), id)
		if err != nil {
			logrus.WithError(err).Error("Erro ao excluir último pagamento do serviço")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrPaymentNotFound)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	})
}

type setServiceActiveRequest struct {
	Active bool `json:"active"`
}

func SetServiceActive(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req setServiceActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		updated, err := service.SetServiceActive(r.Context(), id, req.Active)
		if err != nil {
			logrus.WithError(err).Error("Erro ao alterar ativação do serviço")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrServiceNotFound)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	})
}

func DeleteService(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		deleteLedger := r.URL.Query().Get("delete_ledger") == "true"

		if err := service.DeleteService(r.Context(), id, deleteLedger); err != nil {
			logrus.WithError(err).Error("Erro ao excluir serviço")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrServiceNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
	})
}

func ListServicePayments(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		payments, err := service.ListServicePayments(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err, apiErrors.ErrServiceNotFound)
			return
		}

		writeJSON(w, http.StatusOK, payments)
	})
}
