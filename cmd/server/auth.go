package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
)

const adminTokenHeader = "X-Admin-Token"

// authService signs and verifies admin tokens of the form
// base64(subject) "." hex(hmac-sha256(base64(subject))).
type authService struct {
	secret []byte
}

func newAuthService(secret string) *authService {
	return &authService{secret: []byte(secret)}
}

func (a *authService) enabled() bool { return len(a.secret) > 0 }

func (a *authService) createToken(subject string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(subject))
	return payload + "." + hex.EncodeToString(a.sign(payload))
}

func (a *authService) sign(payload string) []byte {
	mac := hmac.New(sha256.New, a.secret)
	_, _ = mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func (a *authService) verifyToken(value string) (string, bool) {
	if !a.enabled() {
		return "", false
	}

	payload, signature, ok := strings.Cut(value, ".")
	if !ok || strings.Contains(signature, ".") {
		return "", false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, a.sign(payload)) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(decoded) == 0 {
		return "", false
	}

	return string(decoded), true
}

// requireAdmin rejects requests without a valid admin token. With no secret
// configured every request is rejected.
func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := s.auth.verifyToken(r.Header.Get(adminTokenHeader))
		if !ok {
			writeError(w, http.StatusUnauthorized, "admin token required")
			return
		}
		s.requestLogger(r).Info().Str("admin", subject).Str("path", r.URL.Path).Msg("admin request")
		next.ServeHTTP(w, r)
	})
}
