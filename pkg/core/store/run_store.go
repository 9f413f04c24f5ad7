package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"dcf_valuation/pkg/core/assumption"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("valuation run not found")

// ValuationRun is a persisted valuation: the inputs, the headline numbers and the full result.
type ValuationRun struct {
	ID                     string                 `json:"id"`
	CompanyName            string                 `json:"company_name"`
	Assumptions            assumption.Assumptions `json:"assumptions"`
	WACC                   decimal.Decimal        `json:"wacc"`
	EnterpriseValue        decimal.NullDecimal    `json:"enterprise_value"`
	EquityValue            decimal.NullDecimal    `json:"equity_value"`
	IntrinsicValuePerShare decimal.NullDecimal    `json:"intrinsic_value_per_share"`
	Result                 json.RawMessage        `json:"result"`
	CreatedAt              time.Time              `json:"created_at"`
}

// RunRepository persists and retrieves valuation runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run *ValuationRun) error
	GetRun(ctx context.Context, id string) (*ValuationRun, error)
	ListRuns(ctx context.Context, company string, limit int) ([]ValuationRun, error)
}

// RunStore is a hybrid run vault: DB (primary) + file system (fallback/local).
type RunStore struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunStore creates a run store.
// If pool is nil, runs are kept as JSON files in dir (default .cache/valuation_runs).
func NewRunStore(pool *pgxpool.Pool, dir string) *RunStore {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "valuation_runs")
	}
	if pool == nil {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check RunStore dir: %v\n", err)
		}
		return &RunStore{fileDir: dir}
	}
	return &RunStore{pool: pool}
}

// SaveRun assigns an ID and timestamp when missing and stores the run.
func (s *RunStore) SaveRun(ctx context.Context, run *ValuationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	if s.pool != nil {
		assumptionsJSON, err := json.Marshal(run.Assumptions)
		if err != nil {
			return fmt.Errorf("failed to marshal assumptions: %w", err)
		}
		query := `
			INSERT INTO valuation_runs (
				id, company_name, assumptions, wacc,
				enterprise_value, equity_value, intrinsic_value_per_share,
				result, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				company_name = EXCLUDED.company_name,
				assumptions = EXCLUDED.assumptions,
				wacc = EXCLUDED.wacc,
				enterprise_value = EXCLUDED.enterprise_value,
				equity_value = EXCLUDED.equity_value,
				intrinsic_value_per_share = EXCLUDED.intrinsic_value_per_share,
				result = EXCLUDED.result
		`
		_, err = s.pool.Exec(ctx, query,
			run.ID, run.CompanyName, assumptionsJSON, run.WACC,
			run.EnterpriseValue, run.EquityValue, run.IntrinsicValuePerShare,
			[]byte(run.Result), run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save valuation run: %w", err)
		}
		return nil
	}

	fileBytes, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal valuation run: %w", err)
	}
	if err := os.WriteFile(s.runPath(run.ID), fileBytes, 0644); err != nil {
		return fmt.Errorf("failed to save run file: %w", err)
	}
	return nil
}

// GetRun loads one run by ID.
func (s *RunStore) GetRun(ctx context.Context, id string) (*ValuationRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("run id %q: %w", id, ErrRunNotFound)
	}

	if s.pool != nil {
		query := `
			SELECT id, company_name, assumptions, wacc,
				enterprise_value, equity_value, intrinsic_value_per_share,
				result, created_at
			FROM valuation_runs
			WHERE id = $1
		`
		run, err := scanRun(s.pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("run id %q: %w", id, ErrRunNotFound)
			}
			return nil, fmt.Errorf("failed to load valuation run: %w", err)
		}
		return run, nil
	}

	run, err := s.loadEntry(s.runPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("run id %q: %w", id, ErrRunNotFound)
		}
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first, optionally filtered by company name.
// A non-positive limit returns every match.
func (s *RunStore) ListRuns(ctx context.Context, company string, limit int) ([]ValuationRun, error) {
	if s.pool != nil {
		query := `
			SELECT id, company_name, assumptions, wacc,
				enterprise_value, equity_value, intrinsic_value_per_share,
				result, created_at
			FROM valuation_runs
			WHERE ($1 = '' OR company_name = $1)
			ORDER BY created_at DESC
		`
		args := []any{company}
		if limit > 0 {
			query += " LIMIT $2"
			args = append(args, limit)
		}

		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to list valuation runs: %w", err)
		}
		defer rows.Close()

		var runs []ValuationRun
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan valuation run: %w", err)
			}
			runs = append(runs, *run)
		}
		return runs, rows.Err()
	}

	return s.scanFiles(company, limit)
}

func scanRun(row pgx.Row) (*ValuationRun, error) {
	var (
		run             ValuationRun
		assumptionsJSON []byte
		resultJSON      []byte
	)
	err := row.Scan(
		&run.ID, &run.CompanyName, &assumptionsJSON, &run.WACC,
		&run.EnterpriseValue, &run.EquityValue, &run.IntrinsicValuePerShare,
		&resultJSON, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assumptionsJSON, &run.Assumptions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assumptions: %w", err)
	}
	run.Result = compactJSON(resultJSON)
	return &run, nil
}

// Internal File Helpers

func (s *RunStore) runPath(id string) string {
	return filepath.Join(s.fileDir, strings.ReplaceAll(id, "-", "")+".json")
}

func (s *RunStore) loadEntry(path string) (*ValuationRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run ValuationRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run file: %w", err)
	}
	run.Result = compactJSON(run.Result)
	return &run, nil
}

// compactJSON strips insignificant whitespace so stored payloads compare
// equal regardless of how jsonb or an older indented file laid them out.
func compactJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func (s *RunStore) scanFiles(company string, limit int) ([]ValuationRun, error) {
	entries, err := os.ReadDir(s.fileDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run dir: %w", err)
	}

	var runs []ValuationRun
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		run, err := s.loadEntry(filepath.Join(s.fileDir, e.Name()))
		if err != nil {
			continue
		}
		if company != "" && run.CompanyName != company {
			continue
		}
		runs = append(runs, *run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
