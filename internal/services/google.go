package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GoogleIdentity is the subset of a verified Google ID token the service uses.
type GoogleIdentity struct {
	Audience string
	Subject  string
	Email    string
	Name     string
	Picture  string
}

// GoogleVerifier checks a Google ID token and returns its claims.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// TokenInfoVerifier verifies ID tokens against Google's tokeninfo endpoint.
type TokenInfoVerifier struct {
	Endpoint string
	Client   *http.Client
}

func NewTokenInfoVerifier() *TokenInfoVerifier {
	return &TokenInfoVerifier{
		Endpoint: googleTokenInfoURL,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type googleTokenInfo struct {
	Aud     string `json:"aud"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Sub     string `json:"sub"`
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token verification failed with status %d", resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}
	return &GoogleIdentity{
		Audience: info.Aud,
		Subject:  info.Sub,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}, nil
}
