package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/R-Oraby/Macro-Models/internal/config"
	"github.com/R-Oraby/Macro-Models/internal/model"
	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"github.com/R-Oraby/Macro-Models/pkg/testutil"
	"go.uber.org/zap"
)

func baseConfig(t *testing.T) config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return *conf
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", baseConfig(t))
}

// multipartRequest builds a POST /api/simulate request carrying file (when
// non-empty) and the given form fields.
func multipartRequest(t *testing.T, file string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if file != "" {
		part, err := writer.CreateFormFile("file", "data.csv")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte(file)); err != nil {
			t.Fatalf("failed to write form data: %v", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeSimulate(t *testing.T, rr *httptest.ResponseRecorder) simulateResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp simulateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleSimulateSuccess(t *testing.T) {
	handler := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, multipartRequest(t, testutil.CSV(testutil.Observations(8)), nil))

	resp := decodeSimulate(t, rr)
	if resp.RunID == "" {
		t.Error("expected run id in response")
	}
	if resp.Solver != constants.SolverNewton {
		t.Errorf("expected newton solver, got %s", resp.Solver)
	}
	if len(resp.Rows) != 7 {
		t.Errorf("expected 7 rows, got %d", len(resp.Rows))
	}
	if resp.Convergence.Periods != 6 {
		t.Errorf("expected 6 solved periods, got %d", resp.Convergence.Periods)
	}
	if len(resp.Comparison) != 4 {
		t.Errorf("expected 4 fit entries, got %d", len(resp.Comparison))
	}
	if resp.CSV == "" {
		t.Error("expected CSV data in response")
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleSimulateOptions(t *testing.T) {
	handler := newTestHandler(t)
	csv := testutil.CSV(testutil.Observations(5))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, multipartRequest(t, csv, map[string]string{
		"seed":     "9",
		"solver":   constants.SolverLinear,
		"noShocks": "true",
	}))

	resp := decodeSimulate(t, rr)
	if resp.Seed != 9 {
		t.Errorf("expected seed 9, got %d", resp.Seed)
	}
	if resp.Solver != constants.SolverLinear {
		t.Errorf("expected linear solver, got %s", resp.Solver)
	}
	if !resp.ShocksDisabled {
		t.Error("expected shocks to be disabled")
	}
	for _, row := range resp.Rows {
		if row.Shock != (model.Shock{}) {
			t.Errorf("row %d shock = %+v, expected zero", row.Year, row.Shock)
		}
	}
}

func TestHandleSimulateDeterministicAcrossRequests(t *testing.T) {
	handler := newTestHandler(t)
	csv := testutil.CSV(testutil.Observations(6))

	var responses []simulateResponse
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, multipartRequest(t, csv, map[string]string{"seed": "4"}))
		responses = append(responses, decodeSimulate(t, rr))
	}
	for i := range responses[0].Rows {
		if responses[0].Rows[i].Simulated != responses[1].Rows[i].Simulated {
			t.Errorf("row %d differs between identical requests", i)
		}
	}
}

func TestHandleSimulateErrors(t *testing.T) {
	valid := testutil.CSV(testutil.Observations(4))

	tests := []struct {
		name       string
		file       string
		fields     map[string]string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing file",
			fields:     map[string]string{"seed": "1"},
			wantStatus: http.StatusBadRequest,
			wantError:  "missing dataset file",
		},
		{
			name:       "invalid dataset",
			file:       "Year,RGDP\n2000,1\n",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid dataset",
		},
		{
			name:       "non-positive CPI",
			file:       strings.Replace(valid, ",50,", ",-50,", 1),
			wantStatus: http.StatusBadRequest,
			wantError:  "CPI",
		},
		{
			name:       "invalid seed",
			file:       valid,
			fields:     map[string]string{"seed": "-3"},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid seed",
		},
		{
			name:       "unknown solver",
			file:       valid,
			fields:     map[string]string{"solver": "bisection"},
			wantStatus: http.StatusBadRequest,
			wantError:  "bisection",
		},
		{
			name:       "invalid noShocks",
			file:       valid,
			fields:     map[string]string{"noShocks": "maybe"},
			wantStatus: http.StatusBadRequest,
			wantError:  "noShocks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newTestHandler(t).ServeHTTP(rr, multipartRequest(t, tt.file, tt.fields))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if !strings.Contains(resp["error"], tt.wantError) {
				t.Errorf("error %q does not mention %q", resp["error"], tt.wantError)
			}
		})
	}
}

func TestHandleSimulateMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/simulate", nil)
	rr := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleSimulateUploadTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 256, "test", baseConfig(t))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, multipartRequest(t, testutil.CSV(testutil.Observations(40)), nil))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleParameters(t *testing.T) {
	conf := baseConfig(t)
	conf.Model.Rho = 0.5
	handler := NewHandler(zap.NewNop(), 0, "", conf)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/parameters", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp parametersResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Parameters.Rho != 0.5 {
		t.Errorf("expected rho 0.5, got %v", resp.Parameters.Rho)
	}
	if resp.Solver.Method != constants.SolverNewton {
		t.Errorf("expected newton solver, got %s", resp.Solver.Method)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/parameters", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"1.2.3", "1.2.3"},
		{"  ", "dev"},
	}
	for _, tt := range tests {
		handler := NewHandler(nil, 0, tt.version, baseConfig(t))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))

		var resp map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["version"] != tt.expected {
			t.Errorf("version = %q, expected %q", resp["version"], tt.expected)
		}
	}
}
