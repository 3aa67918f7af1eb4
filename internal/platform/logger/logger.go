package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Logger wraps a sugared zap logger and scrubs sensitive values before they
// reach a sink. Credentials are redacted outright; person identifiers are
// replaced with a salted hash so log lines stay correlatable.
type Logger struct {
	sugar *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: built.Sugar()}, nil
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, scrubPairs(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, scrubPairs(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, scrubPairs(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, scrubPairs(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.sugar.Fatalw(msg, scrubPairs(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(scrubPairs(kv)...)}
}

// redactFragments marks keys whose values never belong in a log line.
var redactFragments = []string{
	"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "email",
}

// hashFragments marks person identifiers: BLGU officials, assessors, and
// uploaders are hashed rather than logged in the clear.
var hashFragments = []string{"user_id", "assessor_id", "uploaded_by", "submitted_by"}

var (
	scrubOnce sync.Once
	scrubOff  bool
	hashSalt  string
)

func scrubPairs(kv []any) []any {
	scrubOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			scrubOff = true
		}
		hashSalt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	if scrubOff || len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		out[i+1] = scrubValue(strings.ToLower(key), out[i+1])
	}
	return out
}

func scrubValue(key string, val any) any {
	if matchesAny(key, redactFragments) {
		return "[REDACTED]"
	}
	if matchesAny(key, hashFragments) {
		return hashIdentifier(val)
	}
	if m, ok := val.(map[string]any); ok {
		clean := make(map[string]any, len(m))
		for k, v := range m {
			clean[k] = scrubValue(strings.ToLower(k), v)
		}
		return clean
	}
	if s, ok := val.(string); ok && looksLikeJWT(s) {
		return "[REDACTED]"
	}
	return val
}

func matchesAny(key string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func hashIdentifier(val any) string {
	raw := strings.TrimSpace(fmt.Sprint(val))
	if raw == "" || raw == "<nil>" {
		return ""
	}
	sum := sha256.Sum256([]byte(hashSalt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
