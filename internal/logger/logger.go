package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with the fields the API attaches to every line.
type Logger struct {
	*logrus.Logger
}

// New builds a logger writing to stdout. format is "json" or "text"; unknown
// levels fall back to info.
func New(level string, format string) *Logger {
	return NewWithOutput(level, format, os.Stdout)
}

func NewWithOutput(level string, format string, output io.Writer) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	if strings.EqualFold(strings.TrimSpace(format), "text") {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	log.SetOutput(output)
	return &Logger{Logger: log}
}

// Discard returns a logger that drops every entry. Used by tests.
func Discard() *Logger {
	return NewWithOutput("panic", "json", io.Discard)
}

func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.Logger.WithField("request_id", requestID)
}

func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// AccessDenied records a refused policy decision.
func (l *Logger) AccessDenied(requestID string, resource string, action string, userID uint, reason string) {
	l.Logger.WithFields(logrus.Fields{
		"security":   true,
		"request_id": requestID,
		"resource":   resource,
		"action":     action,
		"user_id":    userID,
		"reason":     reason,
	}).Warn("access denied")
}

// HTTPRequest logs one completed request.
func (l *Logger) HTTPRequest(requestID string, method string, path string, clientIP string, statusCode int, durationMS int64) {
	entry := l.Logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"client_ip":   clientIP,
		"status_code": statusCode,
		"duration_ms": durationMS,
	})

	switch {
	case statusCode >= 500:
		entry.Error("http request failed")
	case statusCode >= 400:
		entry.Warn("http request completed with error")
	default:
		entry.Info("http request completed")
	}
}
