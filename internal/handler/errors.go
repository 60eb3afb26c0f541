package handler

import (
	"errors"
	"log"
	"net/http"

	"ubae_shell/internal/api"
	"ubae_shell/internal/httputil"
	"ubae_shell/internal/model"
)

// writeUpstreamError relays an upstream failure. Client errors keep their
// status and message so the page can show them; anything else is a 502.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		httputil.WriteError(w, apiErr.StatusCode, codeForStatus(apiErr.StatusCode), apiErr.Message)
		return
	}

	log.Printf("[Handler] %s FAILED: err=%v", op, err)
	httputil.WriteBadGatewayWithCode(w, model.CodeUpstreamUnavailable, "Upstream API unavailable")
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return httputil.ErrCodeUnauthorized
	case http.StatusNotFound:
		return httputil.ErrCodeNotFound
	case http.StatusConflict:
		return httputil.ErrCodeConflict
	default:
		return httputil.ErrCodeBadRequest
	}
}
