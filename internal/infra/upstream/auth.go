package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// loginPayload is the body sent to the upstream login endpoint.
type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName,omitempty"`
}

// sessionResponse is what the upstream platform returns from login and
// registration.
type sessionResponse struct {
	Token string `json:"token"`
	User  struct {
		ID          domain.FlexID `json:"id"`
		Email       string        `json:"email"`
		Name        string        `json:"name"`
		CompanyID   domain.FlexID `json:"companyId"`
		CompanyName string        `json:"companyName"`
	} `json:"user"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func (r *sessionResponse) toDomain() *domain.UpstreamSession {
	s := &domain.UpstreamSession{
		Token:       r.Token,
		UserID:      r.User.ID.String(),
		Email:       r.User.Email,
		Name:        r.User.Name,
		CompanyID:   r.User.CompanyID.String(),
		CompanyName: r.User.CompanyName,
	}
	if ts, err := time.Parse(time.RFC3339, r.ExpiresAt); err == nil {
		s.ExpiresAt = ts
	}
	return s
}

// Login exchanges raw credentials for an upstream session. Rejected
// credentials come back as a generic authentication failure with no
// hint about which field was wrong; anything else is an upstream
// error, never silently treated as "not found".
func (c *Client) Login(ctx context.Context, email, password string) (*domain.UpstreamSession, error) {
	ctx, span := tracer.Start(ctx, "Upstream.Login")
	defer span.End()

	body, err := c.send(ctx, "login", http.MethodPost, "/login", "", loginPayload{
		Email:    email,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, errUnauthorized) {
			return nil, &domain.ErrAuthentication{Code: domain.CodeBadLogin, Message: "invalid email or password"}
		}
		return nil, err
	}
	if body == nil {
		// Upstream never 404s a login; treat as an outage.
		return nil, &domain.ErrUpstream{Operation: "login", Err: fmt.Errorf("empty login response")}
	}

	var resp sessionResponse
	if err := unmarshal(body, &resp); err != nil {
		return nil, &domain.ErrUpstream{Operation: "login", Err: err}
	}

	c.logger.Debug("upstream: login ok", zap.String("upstream_user_id", resp.User.ID.String()))
	span.SetAttributes(attribute.String("upstream.user_id", resp.User.ID.String()))

	return resp.toDomain(), nil
}

// Register creates a new buyer account on the upstream platform.
func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UpstreamSession, error) {
	ctx, span := tracer.Start(ctx, "Upstream.Register")
	defer span.End()

	body, err := c.send(ctx, "register", http.MethodPost, "/register", "", registerPayload{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return nil, &domain.ErrConflict{Message: "an account already exists for this email"}
		}
		return nil, err
	}
	if body == nil {
		return nil, &domain.ErrUpstream{Operation: "register", Err: fmt.Errorf("empty register response")}
	}

	var resp sessionResponse
	if err := unmarshal(body, &resp); err != nil {
		return nil, &domain.ErrUpstream{Operation: "register", Err: err}
	}

	return resp.toDomain(), nil
}

// Logout invalidates an upstream token. Best-effort: callers proceed
// with local cleanup whatever happens here.
func (c *Client) Logout(ctx context.Context, upstreamToken string) error {
	ctx, span := tracer.Start(ctx, "Upstream.Logout")
	defer span.End()

	_, err := c.send(ctx, "logout", http.MethodPost, "/logout", upstreamToken, nil)
	if err != nil && !errors.Is(err, errUnauthorized) {
		return err
	}
	return nil
}
