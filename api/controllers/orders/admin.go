package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/groovebay/storefront-backend/api/responses"
	"github.com/groovebay/storefront-backend/api/validators"
	ordersvc "github.com/groovebay/storefront-backend/internal/orders"
	"github.com/groovebay/storefront-backend/pkg/enums"
	pkgerrors "github.com/groovebay/storefront-backend/pkg/errors"
	"github.com/groovebay/storefront-backend/pkg/logger"
)

type updateStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	Note           string  `json:"note" validate:"max=500"`
	TrackingNumber *string `json:"tracking_number"`
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// UpdateStatus moves an order through its lifecycle. Admin only.
func UpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		dto, err := svc.UpdateStatus(r.Context(), ordersvc.UpdateStatusInput{
			OrderID:        id,
			Status:         status,
			Note:           req.Note,
			TrackingNumber: req.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UpdatePaymentStatus records a payment state change. Admin only.
func UpdatePaymentStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var req updatePaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		dto, err := svc.UpdatePaymentStatus(r.Context(), ordersvc.UpdatePaymentStatusInput{
			OrderID:       id,
			PaymentStatus: status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
