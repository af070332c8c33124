package api

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seenimoa/stockdash/internal/config"
)

// PassphraseHeader carries the access passphrase when the query
// parameter is not used.
const PassphraseHeader = "X-Passphrase"

// HashPassphrase returns the bcrypt hash to store in
// access.passphrase_hashes.
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassphrase reports whether passphrase matches any of hashes.
func CheckPassphrase(hashes []string, passphrase string) bool {
	if passphrase == "" {
		return false
	}
	for _, h := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(passphrase)) == nil {
			return true
		}
	}
	return false
}

// AccessGate admits requests whose passphrase, given as the configured
// query parameter or the X-Passphrase header, matches a configured bcrypt
// hash. A disabled gate admits everything.
func AccessGate(cfg config.AccessConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	param := cfg.Param
	if param == "" {
		param = "p"
	}
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pass := r.URL.Query().Get(param)
			if pass == "" {
				pass = r.Header.Get(PassphraseHeader)
			}
			if !CheckPassphrase(cfg.PassphraseHashes, pass) {
				logger.Info("access denied", zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
				writeError(w, http.StatusUnauthorized, "passphrase required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
