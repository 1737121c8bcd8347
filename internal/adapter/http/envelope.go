package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
)

// functionNameHeader carries the logical external-function name Snowflake
// believes it is invoking. It is the caller identity for routing.
const functionNameHeader = "sf-external-function-name"

// batchRequest is the Snowflake external-function call envelope.
type batchRequest struct {
	// Pointer distinguishes a missing data field from an empty batch.
	Data *[]domain.RawRow `json:"data"`
}

// batchResponse mirrors the request envelope on the way out.
type batchResponse struct {
	Data []domain.ResultRow `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// decodeRequest parses the request body into raw rows. The whole body must
// parse; there is no partial decoding.
func decodeRequest(body []byte) ([]domain.RawRow, error) {
	var req batchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBody, err)
	}
	if req.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", domain.ErrInvalidBody)
	}
	return *req.Data, nil
}

// callerIdentity extracts the external-function name from the request
// headers, returned verbatim.
func callerIdentity(headers http.Header) (string, error) {
	name := headers.Get(functionNameHeader)
	if name == "" {
		return "", domain.ErrMissingFunctionName
	}
	return name, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}
