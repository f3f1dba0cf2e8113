package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mudassirkhan-17/policyqc/constants"
	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/pipeline"
)

// RunRepository persists finished validation runs and their per-record rows.
type RunRepository interface {
	SaveRun(ctx context.Context, rep *pipeline.Report) error
	GetRun(ctx context.Context, runID string) (*StoredRun, error)
	ListRuns(ctx context.Context, limit int) ([]StoredRun, error)
}

// StoredRun is one row from validation_runs.
type StoredRun struct {
	RunID       string
	Task        string
	Status      string
	Model       string
	Report      map[string]any
	Diagnostics []string
	CreatedAt   time.Time
}

type runRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRunRepository(pool *pgxpool.Pool, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{pool: pool, log: log}
}

const insertRunSQL = `
INSERT INTO validation_runs
	(run_id, task, status, model, certificate_file, policy_files, report, diagnostics, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (run_id) DO UPDATE SET
	status = EXCLUDED.status,
	report = EXCLUDED.report,
	diagnostics = EXCLUDED.diagnostics`

const insertRecordSQL = `
INSERT INTO validation_records
	(run_id, field, cert_value, policy_value, status, match_type)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *runRepo) SaveRun(ctx context.Context, rep *pipeline.Report) error {
	reportJSON, err := json.Marshal(rep.Report)
	if err != nil {
		r.log.Error("run save failed", "run_id", rep.RunID, "err", err)
		return common.NewAppError("DB_ERROR", "failed to serialize report", err)
	}
	diagJSON, _ := json.Marshal(rep.Metadata.Diagnostics)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.log.Error("run save failed", "run_id", rep.RunID, "err", err)
		return common.NewAppError("DB_ERROR", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertRunSQL,
		rep.RunID, string(rep.Task), string(rep.Status), rep.Metadata.Model,
		rep.Metadata.CertificateFile, rep.Metadata.PolicyFiles,
		reportJSON, diagJSON, rep.Metadata.GeneratedAt)
	if err != nil {
		r.log.Error("run save failed", "run_id", rep.RunID, "err", err)
		return common.NewAppError("DB_ERROR", "failed to insert run", err)
	}

	if rep.QC != nil {
		for _, rec := range rep.QC.Records {
			_, err = tx.Exec(ctx, insertRecordSQL,
				rep.RunID, rec.Field, rec.Certificate, rec.Policy, string(rec.Status), nil)
			if err != nil {
				r.log.Error("record save failed", "run_id", rep.RunID, "field", rec.Field, "err", err)
				return common.NewAppError("DB_ERROR", "failed to insert record", err)
			}
		}
	}
	for _, chk := range rep.InterestChecks {
		_, err = tx.Exec(ctx, insertRecordSQL,
			rep.RunID, string(constants.CoverageAdditionalInterest), chk.CertName, chk.PolicyName,
			string(chk.Status), string(chk.MatchType))
		if err != nil {
			r.log.Error("record save failed", "run_id", rep.RunID, "err", err)
			return common.NewAppError("DB_ERROR", "failed to insert record", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("run save failed", "run_id", rep.RunID, "err", err)
		return common.NewAppError("DB_ERROR", "failed to commit run", err)
	}
	r.log.Info("run saved", "run_id", rep.RunID, "task", rep.Task, "status", rep.Status)
	return nil
}

func (r *runRepo) GetRun(ctx context.Context, runID string) (*StoredRun, error) {
	const q = `
SELECT run_id, task, status, model, report, diagnostics, created_at
FROM validation_runs WHERE run_id = $1`

	var sr StoredRun
	var reportJSON, diagJSON []byte
	err := r.pool.QueryRow(ctx, q, runID).Scan(
		&sr.RunID, &sr.Task, &sr.Status, &sr.Model, &reportJSON, &diagJSON, &sr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("DB_NOT_FOUND", "run not found", common.ErrNotFound)
	}
	if err != nil {
		r.log.Error("run lookup failed", "run_id", runID, "err", err)
		return nil, common.NewAppError("DB_ERROR", "run lookup failed", common.ErrDatabase)
	}
	if err := json.Unmarshal(reportJSON, &sr.Report); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to decode stored report", err)
	}
	if len(diagJSON) > 0 {
		_ = json.Unmarshal(diagJSON, &sr.Diagnostics)
	}
	return &sr, nil
}

func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]StoredRun, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT run_id, task, status, model, report, diagnostics, created_at
FROM validation_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		r.log.Error("run list failed", "err", err)
		return nil, common.NewAppError("DB_ERROR", "failed to list runs", err)
	}
	defer rows.Close()

	var out []StoredRun
	for rows.Next() {
		var sr StoredRun
		var reportJSON, diagJSON []byte
		if err := rows.Scan(&sr.RunID, &sr.Task, &sr.Status, &sr.Model, &reportJSON, &diagJSON, &sr.CreatedAt); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan run", err)
		}
		if err := json.Unmarshal(reportJSON, &sr.Report); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to decode stored report", err)
		}
		if len(diagJSON) > 0 {
			_ = json.Unmarshal(diagJSON, &sr.Diagnostics)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
