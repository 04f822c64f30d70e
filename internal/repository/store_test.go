package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/paiban/scheduler/internal/repository"
	"github.com/paiban/scheduler/pkg/model"
)

func scenarioAsJSON(s *model.BusinessScenario) ([]byte, error) { return json.Marshal(s) }
func policyAsJSON(p model.SchedulingPolicy) ([]byte, error)    { return json.Marshal(p) }
func recordAsJSON(rec map[string]interface{}) ([]byte, error) { return json.Marshal(rec) }

func sampleScenario() *model.BusinessScenario {
	scenario := model.NewBusinessScenario(9, 17, []model.Day{model.Monday}, model.CoverageShifts)
	scenario.AddRole(model.Role{ID: "cashier", Name: "Cashier"})
	return scenario
}

func TestScenarioStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScenarioStore(db)

	mock.ExpectExec("INSERT INTO scenarios").
		WithArgs(sqlmock.AnyArg(), "weekly", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec, err := store.Create(context.Background(), "weekly", sampleScenario(), model.DefaultPolicy())
	require.NoError(t, err)
	require.Equal(t, "weekly", rec.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScenarioStore_GetByID_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScenarioStore(db)

	id := uuid.New()
	scenarioJSON, err := scenarioAsJSON(sampleScenario())
	require.NoError(t, err)
	policyJSON, err := policyAsJSON(model.DefaultPolicy())
	require.NoError(t, err)

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "scenario", "policy", "created_at", "updated_at"}).
		AddRow(id, "weekly", scenarioJSON, policyJSON, now, now)
	mock.ExpectQuery("SELECT (.|\n)*FROM scenarios").WithArgs(id).WillReturnRows(rows)

	rec, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, id, rec.ID)
	require.Equal(t, "weekly", rec.Name)
	require.NotNil(t, rec.Scenario)
	require.Len(t, rec.Scenario.Roles, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScenarioStore_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScenarioStore(db)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.|\n)*FROM scenarios").WithArgs(id).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "scenario", "policy", "created_at", "updated_at"}),
	)

	rec, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Nil(t, rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScenarioStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScenarioStore(db)

	scenarioJSON, err := scenarioAsJSON(sampleScenario())
	require.NoError(t, err)
	policyJSON, err := policyAsJSON(model.DefaultPolicy())
	require.NoError(t, err)
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "name", "scenario", "policy", "created_at", "updated_at"}).
		AddRow(uuid.New(), "weekly", scenarioJSON, policyJSON, now, now).
		AddRow(uuid.New(), "biweekly", scenarioJSON, policyJSON, now, now)
	mock.ExpectQuery("SELECT (.|\n)*FROM scenarios").
		WithArgs("", 20, 0).
		WillReturnRows(rows)

	recs, err := store.List(context.Background(), repository.DefaultListFilter())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScheduleStore(db)
	scenarioID := uuid.New()
	schedule := &model.Schedule{
		IsFeasible:     true,
		ObjectiveValue: 42,
		SolutionIndex:  0,
	}

	mock.ExpectExec("INSERT INTO schedules").
		WithArgs(sqlmock.AnyArg(), scenarioID, true, int64(42), 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec, err := store.Save(context.Background(), scenarioID, schedule)
	require.NoError(t, err)
	require.Equal(t, scenarioID, rec.ScenarioID)
	require.True(t, rec.Feasible)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestScheduleStore_GetLatest_RoundTripsThroughJSON exercises the exact
// path that drove the asMapSlice fix in pkg/model/record.go: the
// record column comes back as real JSON bytes, decoded into a bare
// map[string]interface{} before FromScheduleRecord rebuilds a Schedule.
func TestScheduleStore_GetLatest_RoundTripsThroughJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScheduleStore(db)
	scenarioID := uuid.New()

	original := &model.Schedule{
		Assignments: []model.ShiftAssignment{
			{EmployeeID: "alice", Day: model.Monday, StartHour: 9, EndHour: 12, RoleID: "cashier"},
		},
		SlotAssignments: map[model.Slot][]model.SlotEmployee{
			{Day: model.Monday, Hour: 9}: {{EmployeeID: "alice", RoleID: "cashier"}},
		},
		CoverageMatrix: map[model.CoverageKey]model.EmployeeID{
			{Day: model.Monday, Hour: 9, RoleID: "cashier"}: "alice",
		},
		EmployeeHours:    map[model.EmployeeID]int{"alice": 3},
		EmployeeOvertime: map[model.EmployeeID]int{"alice": 0},
		ConsecutiveDays:  map[model.EmployeeID]int{"alice": 1},
		IsFeasible:       true,
		ObjectiveValue:   7,
	}

	recordJSON, err := recordAsJSON(original.ToRecord())
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"record"}).AddRow(recordJSON)
	mock.ExpectQuery("SELECT record(.|\n)*FROM schedules").WithArgs(scenarioID).WillReturnRows(rows)

	schedule, err := store.GetLatest(context.Background(), scenarioID)
	require.NoError(t, err)
	require.NotNil(t, schedule)
	require.True(t, schedule.IsFeasible)
	require.Len(t, schedule.Assignments, 1)
	require.Equal(t, 3, schedule.EmployeeHours["alice"])
}

func TestScheduleStore_GetLatest_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScheduleStore(db)
	scenarioID := uuid.New()

	mock.ExpectQuery("SELECT record(.|\n)*FROM schedules").WithArgs(scenarioID).
		WillReturnRows(sqlmock.NewRows([]string{"record"}))

	schedule, err := store.GetLatest(context.Background(), scenarioID)
	require.NoError(t, err)
	require.Nil(t, schedule)
}

func TestScheduleStore_ListByScenario(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := repository.NewScheduleStore(db)
	scenarioID := uuid.New()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "scenario_id", "feasible", "objective_value", "solution_index", "generated_at"}).
		AddRow(uuid.New(), scenarioID, true, int64(10), 0, now).
		AddRow(uuid.New(), scenarioID, true, int64(12), 1, now)
	mock.ExpectQuery("SELECT (.|\n)*FROM schedules").
		WithArgs(scenarioID, 20, 0).
		WillReturnRows(rows)

	recs, err := store.ListByScenario(context.Background(), scenarioID, repository.DefaultListFilter())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
