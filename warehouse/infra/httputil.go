package infra

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"warehousenow/warehouse/domain"
)

const maxErrorBody = 512

// decodeResponse valida o status e decodifica o corpo JSON em dst.
func decodeResponse(resp *http.Response, what string, dst any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s returned %d: %s", domain.ErrUpstream, what, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", domain.ErrUpstream, what, err)
	}
	return nil
}
