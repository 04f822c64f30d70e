package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/scheduler/internal/httpapi"
	"github.com/paiban/scheduler/pkg/cpsolve"
	"github.com/paiban/scheduler/pkg/cpsolve/bruteforce"
	"github.com/paiban/scheduler/pkg/model"
)

func bruteForceFactory() httpapi.BackendFactory {
	return func() cpsolve.Backend { return bruteforce.New() }
}

func twoEmployeeScenario() *model.BusinessScenario {
	scenario := model.NewBusinessScenario(9, 11, []model.Day{model.Monday}, model.CoverageShifts)
	scenario.AddRole(model.Role{ID: "cashier", Name: "Cashier"})
	for _, id := range []model.EmployeeID{"alice", "bob"} {
		e := model.NewEmployee(id, model.FullTime)
		e.AddRole("cashier")
		e.MaxHours = 40
		e.Availability.Add(model.Slot{Day: model.Monday, Hour: 9})
		e.Availability.Add(model.Slot{Day: model.Monday, Hour: 10})
		scenario.AddEmployee(e)
	}
	scenario.AddShiftTemplate(model.ShiftTemplate{
		ID: "T1", StartHour: 9, EndHour: 11,
		Days:  map[model.Day]struct{}{model.Monday: {}},
		Roles: []model.ShiftRoleRequirement{{RoleID: "cashier", Count: 1, MaxCount: 1}},
	})
	return scenario
}

func TestHandleHealth(t *testing.T) {
	srv := httpapi.NewServer(bruteForceFactory())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestHandleSolve_RejectsMissingScenario(t *testing.T) {
	srv := httpapi.NewServer(bruteForceFactory())
	req := httptest.NewRequest(http.MethodPost, "/v1/schedules/solve", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSolve_RejectsMalformedJSON(t *testing.T) {
	srv := httpapi.NewServer(bruteForceFactory())
	req := httptest.NewRequest(http.MethodPost, "/v1/schedules/solve", bytes.NewBufferString(`not json`))
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSolve_ThenAlternative_ReturnsSessionAndDistinctSchedule(t *testing.T) {
	srv := httpapi.NewServer(bruteForceFactory())

	policy := model.DefaultPolicy()
	policy.MinShiftHours = 1
	solveBody, err := json.Marshal(map[string]interface{}{
		"scenario":           twoEmployeeScenario(),
		"time_limit_seconds": 1,
		"policy":             policy,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/schedules/solve", bytes.NewReader(solveBody))
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var solveResp struct {
		SessionID string                 `json:"session_id"`
		Schedule  map[string]interface{} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &solveResp))
	require.NotEmpty(t, solveResp.SessionID)
	require.Equal(t, true, solveResp.Schedule["is_feasible"])

	altBody, err := json.Marshal(map[string]interface{}{
		"session_id":          solveResp.SessionID,
		"time_limit_seconds":  1,
	})
	require.NoError(t, err)

	altReq := httptest.NewRequest(http.MethodPost, "/v1/schedules/alternative", bytes.NewReader(altBody))
	altW := httptest.NewRecorder()
	srv.Mux().ServeHTTP(altW, altReq)
	require.Equal(t, http.StatusOK, altW.Code)

	var altResp struct {
		SessionID string                 `json:"session_id"`
		Schedule  map[string]interface{} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(altW.Body.Bytes(), &altResp))
	require.Equal(t, solveResp.SessionID, altResp.SessionID)
	require.NotEqual(t, solveResp.Schedule["coverage_matrix"], altResp.Schedule["coverage_matrix"])
}

func TestHandleAlternative_UnknownSessionIsRejected(t *testing.T) {
	srv := httpapi.NewServer(bruteForceFactory())
	body, _ := json.Marshal(map[string]interface{}{"session_id": "does-not-exist"})
	req := httptest.NewRequest(http.MethodPost, "/v1/schedules/alternative", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
