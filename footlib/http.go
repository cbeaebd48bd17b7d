package footlib

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type httpHandler struct {
	f *Footprint
}

func (h httpHandler) alive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if h.f.isClosed() {
			h.sendError(w, ErrFootprintShutdown, "Service is shutting down", http.StatusServiceUnavailable)

			return
		}

		next.ServeHTTP(w, req)
	})
}

func (h httpHandler) admission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		identity := h.identity(req)

		allowed, err := h.f.limiter.Allow(req.Context(), identity)
		if err != nil {
			// fail open if limiter backend is broken
			h.f.metrics.AdmissionError()
			h.f.logger.AdmissionError(identity, err)

			allowed = true
		}

		if !allowed {
			h.f.metrics.VisitorRequest(req.Method, "rejected")

			if retryAfter := h.retryAfter(req.Context(), identity); retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}

			h.sendError(w, nil, "Too many requests, please try again later", http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, req)
	})
}

// retryAfter returns a number of seconds to wait before the next
// attempt. If limiter cannot tell a time left, a whole window is used.
func (h httpHandler) retryAfter(ctx context.Context, identity string) int {
	var left time.Duration

	if retrier, ok := h.f.limiter.(AdmissionRetrier); ok {
		if value, err := retrier.RetryAfter(ctx, identity); err == nil {
			left = value
		}
	}

	if left <= 0 {
		if win, ok := h.f.limiter.(interface{ Window() time.Duration }); ok {
			left = win.Window()
		}
	}

	return int(math.Ceil(left.Seconds()))
}

func (h httpHandler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := fmt.Errorf("handler has panicked: %v", rec)

				h.f.logger.HTTPError(middleware.GetReqID(req.Context()), req.URL.Path, err)
				h.sendError(w, err, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, req)
	})
}

// identity is a key of the client for admission control.
func (h httpHandler) identity(req *http.Request) string {
	if h.f.trustXFF {
		if xff := firstForwardedFor(req.Header.Get("X-Forwarded-For")); xff != "" {
			return xff
		}
	}

	if ip := connectionIP(req); ip != "" {
		return ip
	}

	return UnknownValue
}

func (h httpHandler) sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
		verbose:    h.f.verbose,
	}

	h.sendJSON(w, e.StatusCode(), e)
}

func connectionIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err == nil {
		return host
	}

	return strings.TrimSpace(req.RemoteAddr)
}

func firstForwardedFor(header string) string {
	if header == "" {
		return ""
	}

	return strings.TrimSpace(strings.Split(header, ",")[0])
}

func newHTTPHandler(f *Footprint, allowOrigin string) http.Handler {
	handler := httpHandler{
		f: f,
	}
	router := chi.NewRouter()

	router.Use(middleware.StripSlashes)
	router.Use(handler.recoverer)
	router.Use(handler.alive)

	if allowOrigin != "" {
		router.Use(middleware.SetHeader("Access-Control-Allow-Origin", allowOrigin))
	}

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handler.sendError(w, nil, "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handler.sendError(w, nil, "This HTTP method is not allowed", http.StatusMethodNotAllowed)
	})

	router.Group(func(r chi.Router) {
		r.Use(handler.admission)

		r.Post("/visitor", handler.handlePostVisitor)
		r.Get("/visitor", handler.handleGetVisitor)
		r.Get("/get-ip-info", handler.handleGetIPInfo)
	})

	router.Get("/stats", handler.handleGetStats)

	return router
}
