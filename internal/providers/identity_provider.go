package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"rently/internal/structures"
)

// ErrInvalidCredentials is returned when the identity provider rejects the
// supplied email/password pair. It is terminal, never retried.
var ErrInvalidCredentials = errors.New("invalid credentials")

// IdentityVerifierInterface is the boundary to the external identity
// provider. Only its request/response contract is consumed here.
type IdentityVerifierInterface interface {
	VerifyCredentials(ctx context.Context, email, password string) (string, error)
}

type IdentityClient struct {
	url    string
	client *http.Client
	logger Logger
}

func NewIdentityProvider(conf *structures.Config, logger Logger) IdentityVerifierInterface {
	return &IdentityClient{
		url:    conf.Auth.IdentityURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type verifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyResponse struct {
	UserID string `json:"user_id"`
}

func (ic *IdentityClient) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(verifyRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ic.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ic.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var vr verifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
			return "", fmt.Errorf("decode identity response: %w", err)
		}
		return vr.UserID, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrInvalidCredentials
	default:
		return "", fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
}
