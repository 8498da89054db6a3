package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/pkg/authsdk"
	"github.com/aussiebroadwan/codegrant/pkg/httpx"
)

const readyProbeSubject = "readyz"

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe covering the client registry and code signing.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	clients service.ClientSource,
	tokens *service.TokenService,
	code service.CodeConfig,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Clients: "ok",
			Signer:  "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if clients == nil {
			checks.Clients = "error: no client source"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if _, err := clients.Clients(r.Context()); err != nil {
			checks.Clients = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := selfTest(tokens, code); err != nil {
			checks.Signer = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}

// selfTest issues a throwaway code and checks it validates.
func selfTest(tokens *service.TokenService, code service.CodeConfig) error {
	if tokens == nil {
		return errors.New("no token service")
	}

	probe, err := tokens.IssueAuthCode(readyProbeSubject, code)
	if err != nil {
		return err
	}
	if !tokens.IsValid(probe, code) {
		return errors.New("issued code does not validate")
	}
	return nil
}
