// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks visitor data in production
// ============================================================================
// Every log line of the API goes through these helpers. In production,
// emails, phone numbers, ZIP+4 codes, dates of birth and UUIDs are masked
// before the message reaches the zap logger.
// ============================================================================

package utils

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction enables masking.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	logMu  sync.RWMutex
	logger = newLogger(zapcore.InfoLevel, IsProduction)
)

// ParseLogLevel maps DEBUG/INFO/WARN/ERROR to a zap level, defaulting to INFO.
func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newLogger(level zapcore.Level, production bool) *zap.Logger {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// InitLogger replaces the package logger. Call it once from main after the
// configuration is loaded.
func InitLogger(level string, production bool) {
	logMu.Lock()
	defer logMu.Unlock()
	IsProduction = production
	_ = logger.Sync()
	logger = newLogger(ParseLogLevel(level), production)
}

// SetLogger swaps the underlying zap logger (tests use zaptest/observer).
func SetLogger(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = l
}

// Logger returns the current zap logger.
func Logger() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// SyncLogger flushes buffered entries.
func SyncLogger() {
	_ = Logger().Sync()
}

// ============================================================================
// MASKING PATTERNS
// ============================================================================

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// ZIP+4 only: a bare five digit ZIP is not personal on its own.
	zipPlus4Regex = regexp.MustCompile(`\b\d{5}-\d{4}\b`)

	dobRegex = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})\b`)

	phoneRegex = regexp.MustCompile(`(\+1[\s.-]?)?\(?\b\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}\b`)

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// ============================================================================
// MASKING
// ============================================================================

// MaskString masks personal data in a message. It is a no-op outside
// production.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := emailRegex.ReplaceAllString(input, "***@***.***")
	result = uuidRegex.ReplaceAllStringFunc(result, func(id string) string {
		return id[:8] + "..."
	})
	result = dobRegex.ReplaceAllString(result, "****-**-**")
	result = zipPlus4Regex.ReplaceAllStringFunc(result, func(zip string) string {
		return zip[:5] + "-****"
	})
	result = phoneRegex.ReplaceAllString(result, "***-***-****")

	return result
}

// MaskID keeps the first 8 characters of an ID in production.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// MaskEmail hides an email address in production.
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// SAFE LOGGING
// ============================================================================

func safeMessage(format string, args ...interface{}) string {
	return MaskString(fmt.Sprintf(format, args...))
}

// SafeLog logs at info level with masking.
func SafeLog(format string, args ...interface{}) {
	Logger().Info(safeMessage(format, args...))
}

// SafeDebug is only emitted when LOG_LEVEL=DEBUG.
func SafeDebug(format string, args ...interface{}) {
	l := Logger()
	if !l.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.Debug(safeMessage(format, args...))
}

func SafeInfo(format string, args ...interface{}) {
	Logger().Info(safeMessage(format, args...))
}

func SafeWarn(format string, args ...interface{}) {
	Logger().Warn(safeMessage(format, args...))
}

func SafeError(format string, args ...interface{}) {
	Logger().Error(safeMessage(format, args...))
}

// ============================================================================
// DOMAIN LOGGING
// ============================================================================

// LogQuoteRequest records a quote lookup without the visitor's personal data.
func LogQuoteRequest(product string, cacheKey string, cached bool, count int) {
	Logger().Info("[Quotes] request",
		zap.String("product", product),
		zap.String("key", MaskString(cacheKey)),
		zap.Bool("cached", cached),
		zap.Int("quotes", count),
	)
}

// LogSessionAction records a visitor session change.
func LogSessionAction(action string, sessionID string) {
	Logger().Info("[Session] "+action, zap.String("session", MaskID(sessionID)))
}

// LogAPIRequest records one HTTP request, masking IDs in the path.
func LogAPIRequest(method string, path string, sessionID string, statusCode int, duration string) {
	Logger().Info("[API] "+method+" "+MaskString(path),
		zap.String("session", MaskID(sessionID)),
		zap.Int("status", statusCode),
		zap.String("duration", duration),
	)
}

// LogWebSocket records a WebSocket event for a visitor session.
func LogWebSocket(action string, sessionID string) {
	Logger().Info("[WS] "+action, zap.String("session", MaskID(sessionID)))
}

// ============================================================================
// HELPERS
// ============================================================================

// GetEnvMode returns "production" or "development".
func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

// LogStartup prints the startup banner.
func LogStartup(appName string, version string, port string) {
	l := Logger()
	l.Info(fmt.Sprintf("🚀 %s v%s starting...", appName, version),
		zap.String("mode", GetEnvMode()),
		zap.String("port", port),
		zap.String("level", l.Level().String()),
	)
	if IsProduction {
		l.Info("⚠️  Production mode: visitor data will be masked in logs")
	}
}
