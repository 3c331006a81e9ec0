package service

import (
	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"
)

// resolveUpstreamToken fetches the caller's stored upstream token.
// A missing record means the upstream session expired or was lost on
// restart; the access token alone is not enough to reach upstream, so
// the caller must log in again.
func resolveUpstreamToken(tokens port.TokenStore, userID string) (string, error) {
	rec, ok := tokens.Get(userID)
	if !ok {
		return "", &domain.ErrUpstreamSessionExpired{UserID: userID}
	}
	return rec.Token, nil
}
