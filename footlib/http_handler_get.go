package footlib

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// handleGetIPInfo proxies third-party IP information verbatim. There is
// no caching here.
func (h httpHandler) handleGetIPInfo(w http.ResponseWriter, req *http.Request) {
	upstreamReq, err := http.NewRequestWithContext(req.Context(), http.MethodGet, h.f.ipInfoURL, nil)
	if err != nil {
		h.f.logger.HTTPError(middleware.GetReqID(req.Context()), req.URL.Path, err)
		h.sendError(w, err, "Failed to fetch IP information", http.StatusInternalServerError)

		return
	}

	upstreamReq.Header.Set("Accept", "application/json")

	resp, err := h.f.ipInfoClient.Do(upstreamReq)
	if err != nil {
		h.f.logger.HTTPError(middleware.GetReqID(req.Context()), req.URL.Path, err)
		h.sendError(w, err, "Failed to fetch IP information", http.StatusInternalServerError)

		return
	}

	defer closeResponse(resp)

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body) // nolint: errcheck
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Results []*UsageStats `json:"results"`
		Cache   struct {
			Size int   `json:"size"`
			TTL  int64 `json:"ttl"`
		} `json:"cache"`
	}{
		Results: h.f.UsageStats(),
	}

	response.Cache.Size = h.f.cache.Len()
	response.Cache.TTL = int64(h.f.cache.TTL().Seconds())

	h.sendJSON(w, http.StatusOK, response)
}
