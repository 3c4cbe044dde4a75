package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// HTTPError lets handlers surface a status code alongside the error.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an HTTP status with an underlying error.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// writeError maps an error to an HTTP response. HTTPError picks its own
// status; anything else is a 500 with a generic body so internals stay out
// of responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.StatusCode()
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		http.Error(w, http.StatusText(code), code)
		return
	}
	s.logger.Warn("request rejected",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, err.Error(), code)
}
