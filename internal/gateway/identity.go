package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Abhijith1905/csp-storefront/internal/auth"
)

// IdentityGateway implements auth.IdentityProvider against the hosted
// identity service's REST surface. Credentials travel in request bodies,
// never in the shared bearer header, so it keeps its own anonymous client.
type IdentityGateway struct {
	client *Client
}

func NewIdentityGateway(client *Client) *IdentityGateway {
	return &IdentityGateway{client: client}
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

func (r tokenResponse) toSet() auth.TokenSet {
	return auth.TokenSet{
		AccessToken:  r.AccessToken,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
	}
}

func (g *IdentityGateway) Authenticate(ctx context.Context, email, password string) (auth.TokenSet, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := g.client.request(ctx).SetBody(body).Post("/auth/signin")
	if err != nil {
		return auth.TokenSet{}, err
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return auth.TokenSet{}, auth.ErrInvalidCredentials
	}
	if resp.IsError() {
		return auth.TokenSet{}, apiError("sign in", resp)
	}
	var tokens tokenResponse
	if err := json.Unmarshal(unwrapEnvelope(resp.Body()), &tokens); err != nil {
		return auth.TokenSet{}, fmt.Errorf("decode sign-in response: %w", err)
	}
	return tokens.toSet(), nil
}

func (g *IdentityGateway) Refresh(ctx context.Context, refreshToken string) (auth.TokenSet, error) {
	body := map[string]string{"refreshToken": refreshToken}
	resp, err := g.client.request(ctx).SetBody(body).Post("/auth/refresh")
	if err != nil {
		return auth.TokenSet{}, err
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return auth.TokenSet{}, auth.ErrSessionExpired
	}
	if resp.IsError() {
		return auth.TokenSet{}, apiError("refresh session", resp)
	}
	var tokens tokenResponse
	if err := json.Unmarshal(unwrapEnvelope(resp.Body()), &tokens); err != nil {
		return auth.TokenSet{}, fmt.Errorf("decode refresh response: %w", err)
	}
	return tokens.toSet(), nil
}

func (g *IdentityGateway) Revoke(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	resp, err := g.client.request(ctx).SetBody(body).Post("/auth/signout")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError("revoke session", resp)
	}
	return nil
}

func (g *IdentityGateway) SignUp(ctx context.Context, req auth.SignUpRequest) error {
	body := map[string]string{
		"email":        req.Email,
		"password":     req.Password,
		"given_name":   req.FirstName,
		"family_name":  req.LastName,
		"phone_number": req.PhoneNumber,
		"address":      req.Address,
	}
	resp, err := g.client.request(ctx).SetBody(body).Post("/auth/signup")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError("sign up", resp)
	}
	return nil
}

func (g *IdentityGateway) ConfirmSignUp(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return g.post(ctx, "/auth/confirm", body, "confirm sign up")
}

func (g *IdentityGateway) ResendConfirmationCode(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return g.post(ctx, "/auth/resend-code", body, "resend confirmation code")
}

func (g *IdentityGateway) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return g.post(ctx, "/auth/forgot-password", body, "forgot password")
}

func (g *IdentityGateway) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "newPassword": newPassword}
	return g.post(ctx, "/auth/confirm-forgot-password", body, "confirm forgot password")
}

func (g *IdentityGateway) ChangePassword(ctx context.Context, accessToken, current, updated string) error {
	body := map[string]string{"currentPassword": current, "newPassword": updated}
	resp, err := g.client.request(ctx).
		SetAuthToken(accessToken).
		SetBody(body).
		Post("/auth/change-password")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError("change password", resp)
	}
	return nil
}

func (g *IdentityGateway) UpdateAttributes(ctx context.Context, accessToken string, attrs map[string]string) error {
	resp, err := g.client.request(ctx).
		SetAuthToken(accessToken).
		SetBody(attrs).
		Post("/auth/attributes")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError("update attributes", resp)
	}
	return nil
}

func (g *IdentityGateway) post(ctx context.Context, path string, body any, op string) error {
	resp, err := g.client.request(ctx).SetBody(body).Post(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(op, resp)
	}
	return nil
}
