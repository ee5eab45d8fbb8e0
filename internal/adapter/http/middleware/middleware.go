package middleware

import (
	"context"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
)

type (
	// TokenVerifier checks bearer tokens issued by the external identity
	// subsystem.
	TokenVerifier interface {
		Verify(ctx context.Context, token string) (*models.Principal, error)
	}

	Middleware struct {
		verifier TokenVerifier
		log      logger.Logger
	}
)

func NewMiddleware(verifier TokenVerifier, log logger.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		log:      log,
	}
}
