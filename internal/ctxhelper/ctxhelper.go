// Package ctxhelper provides helper functions for working with the context
package ctxhelper

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// RequestIDHeader carries the ID correlating client and server log entries of the same request
const RequestIDHeader = "X-Request-ID"

var (
	// KeyLogger is the context key for storing the logger in the context
	KeyLogger = ctxKey("logger")
	// KeyRequestID is the context key for storing the ID of the current request
	KeyRequestID = ctxKey("requestId")
)

// internal context key
type ctxKey string

// Logger returns the logger from the current context. If no logger is available, it panics
func Logger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(KeyLogger).(*logrus.Entry)
	if ok {
		return logger
	}
	panic("No logger in context")
}

// RequestID returns the request ID stored in the context or an empty string
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)
	return id
}
