// Package validation provides functionality for validating webhook signatures to verify request authenticity.
package validation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/go-github/v68/github"
	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
)

// SignaturePrefix precedes the hex-encoded HMAC-SHA256 digest in the signature header.
const SignaturePrefix = "sha256="

// WebhookSecret represents a secret used to validate webhook signatures for verifying request authenticity.
type WebhookSecret string

// NewWebhookSecret creates a new WebhookSecret instance from the provided secret string and returns its address.
func NewWebhookSecret(secret string) *WebhookSecret {
	s := WebhookSecret(secret)
	return &s
}

// Sign returns the signature header value GitHub sends for body.
func (s *WebhookSecret) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(*s))
	_, _ = mac.Write(body)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// ValidateSignature validates the HMAC-SHA256 signature of a webhook request using the provided body and headers.
// The header value must match the computed signature byte for byte.
func (s *WebhookSecret) ValidateSignature(body []byte, headers map[string]string) error {
	signature, found := helpers.Header(headers, github.SHA256SignatureHeader)
	if !found {
		return sponsorship.NewError(sponsorship.KindMissingHeader, "missing %s header", github.SHA256SignatureHeader)
	}
	if s == nil || *s == "" {
		return sponsorship.NewError(sponsorship.KindMissingSecret, "missing webhook secret")
	}

	expected := s.Sign(body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return sponsorship.NewError(sponsorship.KindInvalidSignature, "signature mismatch")
	}
	return nil
}
