package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wealthdesk/wealthdesk/internal/result"
	"github.com/wealthdesk/wealthdesk/internal/schema"
)

const maxQueryBodyBytes = 64 << 10

type queryRequest struct {
	Query string `json:"query"`
}

// handleQuery answers with 200 for every downstream fault. Only a malformed
// request is a client error.
func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Gateway == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query gateway is not configured", false, nil)
		return
	}

	var request queryRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes))
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}
	question := strings.TrimSpace(request.Query)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_REQUIRED", "query is required", false, nil)
		return
	}

	writeJSON(w, http.StatusOK, ask(deps, r, question))
}

func ask(deps Dependencies, r *http.Request, question string) (envelope result.Envelope) {
	defer func() {
		if recovered := recover(); recovered != nil {
			if deps.Logger != nil {
				deps.Logger.ErrorContext(r.Context(), "query handler panicked", slog.Any("panic", recovered))
			}
			envelope = result.Apology("")
		}
	}()
	return deps.Gateway.Ask(r.Context(), question)
}

type schemaResponse struct {
	Stores []*schema.Descriptor `json:"stores"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, _ *http.Request) {
	descriptors := deps.Descriptors
	if len(descriptors) == 0 {
		descriptors = []*schema.Descriptor{schema.Clients(), schema.Portfolios()}
	}
	writeJSON(w, http.StatusOK, schemaResponse{Stores: descriptors})
}
