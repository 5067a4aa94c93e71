// Package captcha verifies human-check tokens with the provider
// before a booking request reaches the engine.  The verifier sits in
// the request-intake layer; the scheduling core never sees tokens.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks a client-supplied captcha token.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// HTTPVerifier verifies tokens against a siteverify-compatible
// endpoint.
type HTTPVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// NewHTTPVerifier builds a verifier for the given secret.  An empty
// verifyURL falls back to the Google endpoint.
func NewHTTPVerifier(secret, verifyURL string) *HTTPVerifier {
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	return &HTTPVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify posts the token to the provider and reports whether it
// passed.  Transport failures are errors so the caller can decide to
// reject rather than silently admit traffic.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha provider returned %d", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Success, nil
}
