package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/renewing"
	"github.com/vfg2006/subscription-manager-api/pkg/apiErrors"
)

type createSaleRequest struct {
	ClientID      string  `json:"client_id"`
	ClientName    string  `json:"client_name"`
	ServiceID     string  `json:"service_id"`
	ProfileNumber *int    `json:"profile_number"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	Currency      string  `json:"currency"`
	BillingCycle  string  `json:"billing_cycle"`
	StartDate     string  `json:"start_date"`
	ExpiryDate    string  `json:"expiry_date"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

// writeSaleError trata os conflitos de vaga antes da taxonomia genérica
func writeSaleError(w http.ResponseWriter, err error, notFoundCode string) {
	switch {
	case errors.Is(err, renewing.ErrNoFreeSlots):
		apiErrors.WriteError(w, apiErrors.ErrNoFreeSlots, err.Error(), nil)
	case errors.Is(err, renewing.ErrProfileTaken):
		apiErrors.WriteError(w, apiErrors.ErrProfileTaken, err.Error(), nil)
	default:
		apiErrors.WriteDomainError(w, err, notFoundCode)
	}
}

func CreateSale(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createSaleRequest
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

		created, err := service.CreateSale(r.Context(), renewing.CreateSaleInput{
			ClientID:      req.ClientID,
			ClientName:    req.ClientName,
			ServiceID:     req.ServiceID,
			ProfileNumber: req.ProfileNumber,
			Price:         req.Price,
			Discount:      req.Discount,
			Currency:      req.Currency,
			BillingCycle:  domain.BillingCycle(req.BillingCycle),
			StartDate:     start,
			ExpiryDate:    expiry,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
		})
		if err != nil {
			logrus.WithError(err).Error("Erro ao criar venda")
			writeSaleError(w, err, apiErrors.ErrServiceNotFound)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	})
}

func ListSales(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceID := r.URL.Query().Get("service_id")

		sales, err := service.ListSales(r.Context(), serviceID)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar vendas")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrSaleNotFound)
			return
		}

		writeJSON(w, http.StatusOK, sales)
	})
}

func GetSale(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		found, err := service.GetSale(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err, apiErrors.ErrSaleNotFound)
			return
		}

		writeJSON(w, http.StatusOK, found)
	})
}

func RenewSale(service renewing.RenewalManager) http.Handler {
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

		renewed, err := service.RenewSale(r.Context(), id, input)
		if err != nil {
			logrus.WithError(err).Error("Erro ao renovar venda")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrSaleNotFound)
			return
		}

		writeJSON(w, http.StatusOK, renewed)
	})
}

func EditLastSalePayment(service renewing.RenewalManager) http.Handler {
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

		updated, err := service.EditLastSalePayment(r.Context(), id, patch)
		if err != nil {
			logrus.WithError(err).Error("Erro ao corrigir último pagamento da venda")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrPaymentNotFound)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	})
}

func DeleteLastSalePayment(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		updated, err := service.DeleteLastSalePayment(r.Context(), id)
		if err != nil {
			logrus.WithError(err).Error("Erro ao excluir último pagamento da venda")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrPaymentNotFound)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	})
}

func CutSale(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		cut, err := service.CutSale(r.Context(), id)
		if err != nil {
			logrus.WithError(err).Error("Erro ao cortar venda")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrSaleNotFound)
			return
		}

		writeJSON(w, http.StatusOK, cut)
	})
}

func DeleteSale(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		deleteLedger := r.URL.Query().Get("delete_ledger") == "true"

		if err := service.DeleteSale(r.Context(), id, deleteLedger); err != nil {
			logrus.WithError(err).Error("Erro ao excluir venda")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrSaleNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
	})
}

func ListSalePayments(service renewing.RenewalManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		payments, err := service.ListSalePayments(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err, apiErrors.ErrSaleNotFound)
			return
		}

		writeJSON(w, http.StatusOK, payments)
	})
}
