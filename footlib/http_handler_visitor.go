package footlib

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qri-io/jsonschema"
)

const maxVisitorBodySize = 64 * 1024

// Telemetry is client-asserted and is not validated. We only check that
// a body is an object with scalar values.
var handlePostVisitorJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "properties": {
            "ipAddress": {"type": ["string", "number", "boolean", "null"]},
            "ipLocation": {"type": ["string", "number", "boolean", "null"]},
            "isp": {"type": ["string", "number", "boolean", "null"]},
            "platform": {"type": ["string", "number", "boolean", "null"]},
            "browser": {"type": ["string", "number", "boolean", "null"]},
            "screenWidth": {"type": ["string", "number", "boolean", "null"]},
            "screenHeight": {"type": ["string", "number", "boolean", "null"]},
            "screenSize": {"type": ["string", "number", "boolean", "null"]},
            "javascriptEnabled": {"type": ["string", "number", "boolean", "null"]},
            "cookiesEnabled": {"type": ["string", "number", "boolean", "null"]}
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type visitorResponse struct {
	Message string `json:"message"`
}

func (h httpHandler) handlePostVisitor(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		h.f.metrics.VisitorRequest(req.Method, "invalid")
		h.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return
	}

	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxVisitorBodySize))

	req.Body.Close()

	if err != nil {
		h.f.metrics.VisitorRequest(req.Method, "invalid")
		h.sendError(w, err, "Cannot read request body", http.StatusBadRequest)

		return
	}

	errs, err := handlePostVisitorJSONSchema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		h.f.metrics.VisitorRequest(req.Method, "invalid")
		h.sendError(w, err, "Cannot parse request body", http.StatusBadRequest)

		return
	}

	if len(errs) > 0 {
		h.f.metrics.VisitorRequest(req.Method, "invalid")
		h.sendError(w, errs[0], "Invalid request body", http.StatusBadRequest)

		return
	}

	fields := VisitorFields{}
	if err := json.Unmarshal(bodyBytes, &fields); err != nil {
		h.f.metrics.VisitorRequest(req.Method, "invalid")
		h.sendError(w, err, "Cannot parse request body", http.StatusBadRequest)

		return
	}

	if !fields.HasIdentity() {
		h.f.metrics.VisitorRequest(req.Method, "invalid")
		h.sendError(w, nil, "Missing required visitor information", http.StatusBadRequest)

		return
	}

	h.handleVisitor(w, req, fields)
}

func (h httpHandler) handleGetVisitor(w http.ResponseWriter, req *http.Request) {
	h.handleVisitor(w, req, visitorFieldsFromQuery(req.URL.Query()))
}

// handleVisitor enriches a visit, responds and only then schedules a
// notification. A response is flushed before dispatching so a client
// never waits for notifier.
func (h httpHandler) handleVisitor(w http.ResponseWriter, req *http.Request, fields VisitorFields) {
	raw := RawVisit{
		RemoteIP:     connectionIP(req),
		ForwardedFor: req.Header.Get("X-Forwarded-For"),
		Host:         req.Host,
		UserAgent:    req.UserAgent(),
		Fields:       fields,
		ReceivedAt:   time.Now(),
	}
	record := h.f.enricher.Enrich(req.Context(), raw)

	h.f.metrics.VisitorRequest(req.Method, "ok")
	h.sendJSON(w, http.StatusOK, visitorResponse{
		Message: "Visitor logged successfully",
	})

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	h.f.dispatcher.Dispatch(record)
}
