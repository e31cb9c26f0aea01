package responses

import (
	"encoding/json"
	"net/http"

	"github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// WriteSuccess writes a 200 envelope with the provided data.
func WriteSuccess(w http.ResponseWriter, data any, message string) {
	WriteSuccessStatus(w, http.StatusOK, data, message)
}

// WriteSuccessStatus writes a success envelope with an explicit status code.
func WriteSuccessStatus(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, types.NewSuccess(data, message))
}

// Codes whose service-supplied message is safe to show to clients. Everything
// else collapses to the public message for its code so backend details never
// leak through error text.
var passthroughMessageCodes = map[errors.Code]struct{}{
	errors.CodeValidation:        {},
	errors.CodeInvalidItems:      {},
	errors.CodeInvalidAddress:    {},
	errors.CodeUnauthorized:      {},
	errors.CodeForbidden:         {},
	errors.CodeNotFound:          {},
	errors.CodeProductNotFound:   {},
	errors.CodeInsufficientStock: {},
	errors.CodeConflict:          {},
	errors.CodeStateConflict:     {},
	errors.CodeIdempotency:       {},
	errors.CodeRateLimit:         {},
}

// WriteError maps any error onto the envelope. Untyped errors become a
// generic 500; typed errors keep their code, status, and (when allowed)
// details. The full cause is logged, never serialized.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	typed := errors.As(err)
	if typed == nil {
		typed = errors.Wrap(errors.CodeInternal, err, "unhandled error")
	}

	meta := errors.MetadataFor(typed.Code())
	message := meta.PublicMessage
	if _, ok := passthroughMessageCodes[typed.Code()]; ok && typed.Message() != "" {
		message = typed.Message()
	}

	apiErr := types.APIError{
		Code:    string(typed.Code()),
		Message: message,
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	if log != nil {
		ctx := r.Context()
		dump := errors.Dump(typed)
		ctx = log.WithFields(ctx, map[string]any{
			"error_code":  string(typed.Code()),
			"http_status": meta.HTTPStatus,
			"error_dump":  dump,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			log.Error(ctx, "request failed", typed)
		} else {
			log.Warn(ctx, "request rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, types.NewError(apiErr))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
