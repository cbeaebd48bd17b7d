package providers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxResponseSize = 1024 * 1024

func flushResponse(resp io.ReadCloser) {
	io.Copy(io.Discard, resp) // nolint: errcheck
	resp.Close()
}

// decodeResponse decodes JSON body into target and also returns it as
// a generic map so callers could keep raw provider data.
func decodeResponse(resp *http.Response, target interface{}) (map[string]interface{}, error) {
	body, err := io.ReadAll(io.LimitReader(bufio.NewReader(resp.Body), maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read a response: %w", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	return raw, nil
}

func boolParam(param string) bool {
	switch strings.ToLower(strings.TrimSpace(param)) {
	case "1", "true", "enabled", "yes":
		return true
	default:
		return false
	}
}
