package middleware

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

type HTTPConfig struct {
	AllowedOrigins []string
	AccessLog      io.Writer
}

// recoveryLogger adapts nuts.L to handlers.RecoveryHandlerLogger
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	nuts.L.Errorf("[API] Recovered from panic: %s", fmt.Sprint(v...))
}

// Wrap applies panic recovery, access logging and CORS, outermost first
func Wrap(h http.Handler, cfg HTTPConfig) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With"}),
	)(h)

	if cfg.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(cfg.AccessLog, h)
	}

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

// RequireJSON rejects request bodies not declared as application/json
func RequireJSON(next http.Handler) http.Handler {
	return handlers.ContentTypeHandler(next, "application/json")
}

// accessLog writes combined log lines through nuts.L
type accessLog struct{}

func (accessLog) Write(p []byte) (int, error) {
	line := p
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	nuts.L.Infof("[HTTP] %s", line)
	return len(p), nil
}

// NutsAccessLog returns a writer for HTTPConfig.AccessLog
func NutsAccessLog() io.Writer {
	return accessLog{}
}
