package service

import (
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"

	"go.uber.org/zap"
)

// SessionService enforces the idle timeout on authenticated requests.
// Idle expiry is independent of token expiry: a cryptographically
// valid access token is still rejected once the user has been idle
// past the threshold.
type SessionService struct {
	activity    port.ActivityTracker
	idleTimeout time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(activity port.ActivityTracker, idleTimeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *SessionService {
	return &SessionService{
		activity:    activity,
		idleTimeout: idleTimeout,
		metrics:     metrics,
		logger:      logger,
	}
}

// CheckActivity runs on every authenticated request. A user with no
// activity record (fresh session, or tracker lost on restart) passes
// and gets one; a user idle past the threshold is rejected and their
// record removed so the rejection is repeatable.
func (s *SessionService) CheckActivity(userID string) error {
	last, ok := s.activity.LastActivity(userID)
	if !ok {
		s.activity.Touch(userID)
		return nil
	}

	if idle := time.Since(last); idle > s.idleTimeout {
		s.activity.Remove(userID)
		s.metrics.IncrIdleTimeout()
		s.logger.Info("session expired due to inactivity",
			zap.String("user_id", userID),
			zap.Duration("idle", idle),
		)
		return &domain.ErrAuthentication{
			Code:    domain.CodeIdleTimeout,
			Message: "session expired due to inactivity",
		}
	}

	s.activity.Touch(userID)
	return nil
}
