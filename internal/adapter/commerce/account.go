package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/novalo/storefront/internal/core/domain"
)

func credentialsFromEnvelope(env *envelope) (domain.Credentials, error) {
	if env.Token == "" {
		return domain.Credentials{}, env.failure()
	}
	creds := domain.Credentials{Token: env.Token}
	if env.User != nil {
		creds.Name = env.User.Name
		creds.Email = env.User.Email
		creds.Role = env.User.Role
	}
	return creds, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (domain.Credentials, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/signin", nil, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return domain.Credentials{}, err
	}
	return credentialsFromEnvelope(env)
}

func (c *Client) SignUp(ctx context.Context, reg domain.Registration) (domain.Credentials, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/signup", nil, "", map[string]string{
		"name":       reg.Name,
		"email":      reg.Email,
		"phone":      reg.Phone,
		"password":   reg.Password,
		"rePassword": reg.RePassword,
	})
	if err != nil {
		return domain.Credentials{}, err
	}
	return credentialsFromEnvelope(env)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/forgotPasswords", nil, "", map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	// This endpoint confirms through statusMsg rather than status.
	if env.StatusMsg != "success" && !env.succeeded() {
		return "", env.failure()
	}
	return env.Message, nil
}

func (c *Client) VerifyResetCode(ctx context.Context, code string) error {
	env, err := c.do(ctx, http.MethodPost, "/auth/verifyResetCode", nil, "", map[string]string{"resetCode": code})
	if err != nil {
		return err
	}
	if !env.succeeded() {
		return env.failure()
	}
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	env, err := c.do(ctx, http.MethodPut, "/auth/resetPassword", nil, "", map[string]string{
		"email":       email,
		"newPassword": newPassword,
	})
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", fmt.Errorf("%w: reset did not return a token", ErrUpstream)
	}
	return env.Token, nil
}
