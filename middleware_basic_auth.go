package main

import (
	"crypto/subtle"
	"net/http"
)

type basicAuthMiddleware struct {
	handler  http.Handler
	user     []byte
	password []byte
}

func (b *basicAuthMiddleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	user, pass, _ := req.BasicAuth()

	if subtle.ConstantTimeCompare(b.user, []byte(user))+subtle.ConstantTimeCompare(b.password, []byte(pass)) == 2 {
		b.handler.ServeHTTP(w, req)

		return
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="footprint"`)
	http.Error(w, "Authentication is required", http.StatusUnauthorized)
}

// basicAuth protects admin routes. If credentials are not configured,
// routes are left open.
func basicAuth(conf configBasicAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !conf.Enabled() {
			return next
		}

		return &basicAuthMiddleware{
			handler:  next,
			user:     []byte(conf.User),
			password: []byte(conf.Password),
		}
	}
}
