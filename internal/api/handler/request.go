package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/ledgering"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/renewing"
	"github.com/vfg2006/subscription-manager-api/pkg/apiErrors"
)

// parseDate aceita datas com ou sem horário
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	if date, err := time.Parse(time.RFC3339, raw); err == nil {
		return date, nil
	}

	return time.Parse(time.DateOnly, raw)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
	}
}

// paymentRequest é o corpo compartilhado de renovações e lançamentos iniciais
type paymentRequest struct {
	Amount        float64 `json:"amount"`
	Discount      float64 `json:"discount"`
	Currency      string  `json:"currency"`
	BillingCycle  string  `json:"billing_cycle"`
	StartDate     string  `json:"start_date"`
	ExpiryDate    string  `json:"expiry_date"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

func (r paymentRequest) toRenewalInput() (renewing.RenewalInput, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return renewing.RenewalInput{}, err
	}

	expiry, err := parseDate(r.ExpiryDate)
	if err != nil {
		return renewing.RenewalInput{}, err
	}

	return renewing.RenewalInput{
		Amount:        r.Amount,
		Discount:      r.Discount,
		Currency:      r.Currency,
		BillingCycle:  domain.BillingCycle(r.BillingCycle),
		StartDate:     start,
		ExpiryDate:    expiry,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}, nil
}

// paymentPatchRequest corrige o último lançamento; campos ausentes não mudam
type paymentPatchRequest struct {
	Amount        *float64 `json:"amount"`
	Discount      *float64 `json:"discount"`
	Currency      *string  `json:"currency"`
	BillingCycle  *string  `json:"billing_cycle"`
	StartDate     *string  `json:"start_date"`
	ExpiryDate    *string  `json:"expiry_date"`
	PaymentMethod *string  `json:"payment_method"`
	Notes         *string  `json:"notes"`
}

func (r paymentPatchRequest) toPatch() (ledgering.PaymentPatch, error) {
	patch := ledgering.PaymentPatch{
		Amount:        r.Amount,
		Discount:      r.Discount,
		Currency:      r.Currency,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}

	if r.BillingCycle != nil {
		cycle := domain.BillingCycle(*r.BillingCycle)
		patch.BillingCycle = &cycle
	}

	if r.StartDate != nil {
		start, err := parseDate(*r.StartDate)
		if err != nil {
			return ledgering.PaymentPatch{}, err
		}
		patch.StartDate = &start
	}

	if r.ExpiryDate != nil {
		expiry, err := parseDate(*r.ExpiryDate)
		if err != nil {
			return ledgering.PaymentPatch{}, err
		}
		patch.ExpiryDate = &expiry
	}

	return patch, nil
}
