// Package repository is the illustrative persistence boundary a
// caller can sit in front of the engine: a Postgres-backed store for
// scenarios and the schedules produced for them. The engine itself
// never imports this package (spec §1 Non-goals: persistence is the
// caller's concern, not the solver's).
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/paiban/scheduler/pkg/model"
)

// OpenPostgres opens a connection pool against dsn, registering the
// lib/pq driver.
func OpenPostgres(dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	return db, nil
}

// ScenarioRecord is one saved scenario definition.
type ScenarioRecord struct {
	ID        uuid.UUID
	Name      string
	Scenario  *model.BusinessScenario
	Policy    model.SchedulingPolicy
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScenarioStore persists scenario definitions. Scenario and policy are
// stored as JSON columns — there is no relational schema to keep in
// sync with pkg/model's types as they evolve.
type ScenarioStore struct {
	db DB
}

// NewScenarioStore creates a scenario store.
func NewScenarioStore(db DB) *ScenarioStore {
	return &ScenarioStore{db: db}
}

// Create inserts a new scenario record.
func (s *ScenarioStore) Create(ctx context.Context, name string, scenario *model.BusinessScenario, policy model.SchedulingPolicy) (*ScenarioRecord, error) {
	scenarioJSON, err := json.Marshal(scenario)
	if err != nil {
		return nil, fmt.Errorf("marshal scenario: %w", err)
	}
	policyJSON, err := json.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("marshal policy: %w", err)
	}

	rec := &ScenarioRecord{
		ID:        uuid.New(),
		Name:      name,
		Scenario:  scenario,
		Policy:    policy,
		CreatedAt: time.Now(),
	}
	rec.UpdatedAt = rec.CreatedAt

	query := `
		INSERT INTO scenarios (id, name, scenario, policy, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query, rec.ID, rec.Name, scenarioJSON, policyJSON, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert scenario: %w", err)
	}
	return rec, nil
}

// GetByID loads one scenario record by id.
func (s *ScenarioStore) GetByID(ctx context.Context, id uuid.UUID) (*ScenarioRecord, error) {
	query := `
		SELECT id, name, scenario, policy, created_at, updated_at
		FROM scenarios
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)

	rec := &ScenarioRecord{}
	var scenarioJSON, policyJSON []byte
	err := row.Scan(&rec.ID, &rec.Name, &scenarioJSON, &policyJSON, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan scenario: %w", err)
	}

	rec.Scenario = &model.BusinessScenario{}
	if err := json.Unmarshal(scenarioJSON, rec.Scenario); err != nil {
		return nil, fmt.Errorf("unmarshal scenario: %w", err)
	}
	if err := json.Unmarshal(policyJSON, &rec.Policy); err != nil {
		return nil, fmt.Errorf("unmarshal policy: %w", err)
	}
	return rec, nil
}

// List returns scenario records matching filter.
func (s *ScenarioStore) List(ctx context.Context, filter ListFilter) ([]*ScenarioRecord, error) {
	query := `
		SELECT id, name, scenario, policy, created_at, updated_at
		FROM scenarios
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var out []*ScenarioRecord
	for rows.Next() {
		rec := &ScenarioRecord{}
		var scenarioJSON, policyJSON []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &scenarioJSON, &policyJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario row: %w", err)
		}
		rec.Scenario = &model.BusinessScenario{}
		if err := json.Unmarshal(scenarioJSON, rec.Scenario); err != nil {
			return nil, fmt.Errorf("unmarshal scenario: %w", err)
		}
		if err := json.Unmarshal(policyJSON, &rec.Policy); err != nil {
			return nil, fmt.Errorf("unmarshal policy: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ScheduleRecord is one solved schedule, persisted in the portable
// record shape pkg/model/record.go produces (spec §6, §8).
type ScheduleRecord struct {
	ID             uuid.UUID
	ScenarioID     uuid.UUID
	Feasible       bool
	ObjectiveValue int64
	SolutionIndex  int
	Record         map[string]interface{}
	GeneratedAt    time.Time
}

// ScheduleStore persists solved schedules against the scenario they
// were produced for.
type ScheduleStore struct {
	db DB
}

// NewScheduleStore creates a schedule store.
func NewScheduleStore(db DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Save persists schedule as a ScheduleRecord tied to scenarioID.
func (s *ScheduleStore) Save(ctx context.Context, scenarioID uuid.UUID, schedule *model.Schedule) (*ScheduleRecord, error) {
	recordJSON, err := json.Marshal(schedule.ToRecord())
	if err != nil {
		return nil, fmt.Errorf("marshal schedule record: %w", err)
	}

	rec := &ScheduleRecord{
		ID:             uuid.New(),
		ScenarioID:     scenarioID,
		Feasible:       schedule.IsFeasible,
		ObjectiveValue: schedule.ObjectiveValue,
		SolutionIndex:  schedule.SolutionIndex,
		GeneratedAt:    time.Now(),
	}

	query := `
		INSERT INTO schedules (
			id, scenario_id, feasible, objective_value, solution_index, record, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.ScenarioID, rec.Feasible, rec.ObjectiveValue, rec.SolutionIndex, recordJSON, rec.GeneratedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	rec.Record = schedule.ToRecord()
	return rec, nil
}

// GetLatest returns the most recently generated schedule for a
// scenario, decoded back into a model.Schedule via the portable
// record round-trip.
func (s *ScheduleStore) GetLatest(ctx context.Context, scenarioID uuid.UUID) (*model.Schedule, error) {
	query := `
		SELECT record
		FROM schedules
		WHERE scenario_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query, scenarioID)

	var recordJSON []byte
	if err := row.Scan(&recordJSON); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}

	var rec map[string]interface{}
	if err := json.Unmarshal(recordJSON, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal schedule record: %w", err)
	}
	return model.FromScheduleRecord(rec)
}

// ListByScenario lists every schedule ever generated for a scenario,
// newest first.
func (s *ScheduleStore) ListByScenario(ctx context.Context, scenarioID uuid.UUID, filter ListFilter) ([]*ScheduleRecord, error) {
	query := `
		SELECT id, scenario_id, feasible, objective_value, solution_index, generated_at
		FROM schedules
		WHERE scenario_id = $1
		ORDER BY generated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, scenarioID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*ScheduleRecord
	for rows.Next() {
		rec := &ScheduleRecord{}
		if err := rows.Scan(&rec.ID, &rec.ScenarioID, &rec.Feasible, &rec.ObjectiveValue, &rec.SolutionIndex, &rec.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
