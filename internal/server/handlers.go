package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/earth-metabolome-initiative/sql-rules/internal/cli/output"
	"github.com/earth-metabolome-initiative/sql-rules/internal/inspect/sqlite"
	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// CheckRequest is the POST /api/check request body.
type CheckRequest struct {
	// DDL holds the schema to check, as SQLite-compatible statements.
	DDL string `json:"ddl"`
	// All collects every violation instead of stopping at the first.
	All bool `json:"all,omitempty"`
	// Disabled lists rule names to skip for this check.
	Disabled []string `json:"disabled,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the HTTP status code and a human-readable message.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleHealthz answers liveness probes.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleRules serves the rule catalogue from the global registry.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, output.NewCatalogue(lint.GetAll()))
}

// handleCheck loads a posted DDL schema into an in-memory SQLite database,
// checks it, and returns the report.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.DDL) == "" {
		writeError(w, http.StatusBadRequest, "ddl is required")
		return
	}

	linter, err := s.linterFor(req.Disabled)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	db, err := sqlite.LoadDDL(r.Context(), s.logger, req.DDL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ddl: "+err.Error())
		return
	}

	report := output.NewReport("api")
	if s.cfg.FailFast && !req.All {
		if err := linter.ValidateSchema(db); err != nil {
			report.Add(err)
		}
	} else {
		findings, err := linter.AnalyzeSchemaConcurrent(r.Context(), db, s.cfg.AnalyzeLimit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "check canceled: "+err.Error())
			return
		}
		report.AddAll(findings)
	}

	writeJSON(w, http.StatusOK, report)
}

// linterFor builds a linter from the configured rule set minus the rules a
// request disables.
func (s *Server) linterFor(disabled []string) (*lint.Linter, error) {
	if len(disabled) == 0 {
		return lint.NewLinter(s.rules...)
	}
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[strings.TrimSpace(name)] = true
	}
	selected := make([]lint.Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		if skip[rule.Name()] {
			continue
		}
		selected = append(selected, rule)
	}
	return lint.NewLinter(selected...)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError wraps a message in the error envelope and writes it.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// readJSON decodes the request body into v and closes the body either way.
func readJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
