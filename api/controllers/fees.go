package controllers

import (
	"net/http"

	"github.com/aldomartell/tipply-backend/api/responses"
	"github.com/aldomartell/tipply-backend/api/validators"
	"github.com/aldomartell/tipply-backend/pkg/config"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/fees"
	"github.com/aldomartell/tipply-backend/pkg/logger"
)

type feeQuoteRequest struct {
	GrossCents int64 `json:"gross_cents" validate:"required,min=1"`
}

// QuoteFees returns the fee split the platform applies to a gross tip
// amount, for operators reconciling earner statements.
func QuoteFees(cfg config.PayoutsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body feeQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.GrossCents <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gross_cents must be positive"))
			return
		}

		breakdown := fees.Calculate(body.GrossCents, fees.Rates{
			ProcessorPct:     cfg.ProcessorFeePct,
			PlatformPct:      cfg.PlatformFeePct,
			VATOnPlatformPct: cfg.VATOnPlatformPct,
		})
		responses.WriteSuccess(w, breakdown)
	}
}
