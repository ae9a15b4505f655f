package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/novalo/storefront/internal/core/domain"
	"github.com/novalo/storefront/internal/port"
)

var ErrBadToken = errors.New("malformed session token")

// DecodeIdentity reads the user id and name out of a session token without
// verifying the signature. The commerce API is the verifier; the claims are
// used for display and to address the order-history endpoint.
func DecodeIdentity(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}

	id, _ := claims["id"].(string)
	name, _ := claims["name"].(string)
	if id == "" {
		return domain.Identity{}, ErrBadToken
	}
	return domain.Identity{UserID: id, Name: name}, nil
}

// AuthService delegates account operations to the commerce API and keeps
// the token cache in step with the cookie. The cookie is authoritative; the
// cache is a best-effort copy and its failures never fail a sign-in.
type AuthService struct {
	gateway port.AuthGateway
	orders  port.OrderGateway
	tokens  port.TokenCache
	log     *slog.Logger
}

func NewAuthService(gateway port.AuthGateway, orders port.OrderGateway, tokens port.TokenCache, log *slog.Logger) *AuthService {
	return &AuthService{
		gateway: gateway,
		orders:  orders,
		tokens:  tokens,
		log:     log,
	}
}

func (a *AuthService) SignIn(ctx context.Context, email, password string) (domain.Credentials, error) {
	creds, err := a.gateway.SignIn(ctx, email, password)
	if err != nil {
		return domain.Credentials{}, err
	}
	a.cacheToken(ctx, creds.Token)
	return creds, nil
}

func (a *AuthService) SignUp(ctx context.Context, reg domain.Registration) (domain.Credentials, error) {
	creds, err := a.gateway.SignUp(ctx, reg)
	if err != nil {
		return domain.Credentials{}, err
	}
	a.cacheToken(ctx, creds.Token)
	return creds, nil
}

// SignOut drops the cached token copy. The cookie itself is cleared by the
// HTTP layer; no call is made to the commerce API.
func (a *AuthService) SignOut(ctx context.Context, token string) {
	ident, err := DecodeIdentity(token)
	if err != nil {
		return
	}
	if err := a.tokens.Delete(ctx, ident.UserID); err != nil {
		a.log.Warn("token cache delete failed", "error", err)
	}
}

func (a *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return a.gateway.ForgotPassword(ctx, email)
}

func (a *AuthService) VerifyResetCode(ctx context.Context, code string) error {
	return a.gateway.VerifyResetCode(ctx, code)
}

func (a *AuthService) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	token, err := a.gateway.ResetPassword(ctx, email, newPassword)
	if err != nil {
		return "", err
	}
	a.cacheToken(ctx, token)
	return token, nil
}

// Orders returns the order history of the token's holder.
func (a *AuthService) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	ident, err := DecodeIdentity(token)
	if err != nil {
		return nil, err
	}
	return a.orders.UserOrders(ctx, ident.UserID)
}

func (a *AuthService) cacheToken(ctx context.Context, token string) {
	ident, err := DecodeIdentity(token)
	if err != nil {
		a.log.Warn("session token has no readable claims", "error", err)
		return
	}
	if err := a.tokens.Save(ctx, ident.UserID, token); err != nil {
		a.log.Warn("token cache write failed", "error", err)
	}
}
