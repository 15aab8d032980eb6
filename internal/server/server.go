// Package server exposes simulation runs over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/R-Oraby/Macro-Models/internal/config"
	"github.com/R-Oraby/Macro-Models/internal/dataset"
	"github.com/R-Oraby/Macro-Models/internal/model"
	"github.com/R-Oraby/Macro-Models/internal/simulation"
	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"github.com/R-Oraby/Macro-Models/pkg/output"
	"github.com/R-Oraby/Macro-Models/pkg/validation"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	base          config.Configuration
}

// NewHandler constructs the HTTP handler that serves the simulation API.
// Every request runs against its own copy of base.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, base config.Configuration) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, base: base}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/simulate", h.handleSimulate)
	mux.HandleFunc("/api/parameters", h.handleParameters)
	mux.HandleFunc("/api/version", h.handleVersion)
	return mux
}

type simulateResponse struct {
	output.Report
	CSV      string   `json:"csv"`
	Warnings []string `json:"warnings,omitempty"`
	Duration string   `json:"duration"`
}

type parametersResponse struct {
	Parameters model.Parameters    `json:"parameters"`
	Shocks     config.ShockConfig  `json:"shocks"`
	Solver     config.SolverConfig `json:"solver"`
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing dataset file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read dataset: %v", err), op)
		return
	}

	data, err := dataset.Load(&buf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid dataset: %v", err), op)
		return
	}

	conf, err := h.requestConfiguration(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := simulation.Simulate(h.logger, conf, data)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("simulation failed: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := simulateResponse{
		Report:   output.NewReport(result),
		CSV:      output.CsvString(result),
		Warnings: conf.ValidateConfiguration(),
		Duration: elapsed.String(),
	}

	h.logger.Info("simulation computed",
		zap.String("op", op),
		zap.String("runID", result.RunID),
		zap.Int("periods", data.Len()),
		zap.Int("converged", response.Convergence.Converged),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// requestConfiguration applies the optional seed, solver and noShocks form
// fields to a copy of the base configuration.
func (h *handler) requestConfiguration(r *http.Request) (config.Configuration, error) {
	conf := h.base

	if raw := strings.TrimSpace(r.FormValue("seed")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return conf, fmt.Errorf("invalid seed %q", raw)
		}
		conf.Shocks.Seed = seed
	}

	if method := strings.TrimSpace(r.FormValue("solver")); method != "" {
		if err := validation.ValidateSolverMethod(method); err != nil {
			return conf, err
		}
		conf.Solver.Method = method
	}

	if raw := strings.TrimSpace(r.FormValue("noShocks")); raw != "" {
		disabled, err := strconv.ParseBool(raw)
		if err != nil {
			return conf, fmt.Errorf("invalid noShocks value %q", raw)
		}
		conf.Shocks.Disabled = disabled
	}
	return conf, nil
}

func (h *handler) handleParameters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	p, err := h.base.Parameters()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleParameters")
		return
	}

	h.writeJSON(w, http.StatusOK, parametersResponse{
		Parameters: p,
		Shocks:     h.base.Shocks,
		Solver:     h.base.Solver,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("simulation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
