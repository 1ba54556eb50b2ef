package observ

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "happythoughts"

func isProduction(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "production")
}

// NewLogger returns JSON output with ISO timestamps in production and
// colored console output elsewhere. Every entry carries service and env.
// An unparsable level falls back to info.
func NewLogger(env, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if isProduction(env) {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.InitialFields = map[string]any{"service": serviceName, "env": env}

	return cfg.Build()
}

// GinMode picks the gin mode matching env.
func GinMode(env string) string {
	if isProduction(env) {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
