package datasource

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresSource reads job history snapshots from PostgreSQL
type PostgresSource struct {
	db  *sql.DB
	dsn string
}

// NewPostgresSource opens the database and applies the schema
func NewPostgresSource(dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	source := &PostgresSource{
		db:  db,
		dsn: dsn,
	}

	if err := source.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return source, nil
}

func (s *PostgresSource) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// GetJob rebuilds a job with its DAGs, vertices, tasks and counters in stored order
func (s *PostgresSource) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	job := &models.Job{ID: jobID}
	var name sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT name, succeeded FROM jobs WHERE id = $1`, jobID,
	).Scan(&name, &job.Succeeded)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}
	job.Name = name.String

	query := `
		SELECT d.id, v.id, v.name,
			t.id, t.attempt_id, t.sampled, t.total_runtime_ms,
			c.name, c.value
		FROM dags d
		LEFT JOIN vertices v ON v.job_id = d.job_id AND v.dag_id = d.id
		LEFT JOIN tasks t ON t.vertex_id = v.id
		LEFT JOIN task_counters c ON c.vertex_id = t.vertex_id AND c.task_id = t.id
		WHERE d.job_id = $1
		ORDER BY d.position, v.position, t.position, c.name
	`

	rows, err := s.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var (
		dag      *models.DAG
		vertex   *models.Vertex
		task     *models.Task
		vertexID int64
	)

	for rows.Next() {
		var (
			dagID             string
			vID               sql.NullInt64
			vName             sql.NullString
			taskID, attemptID sql.NullString
			sampled           sql.NullBool
			runtimeMs         sql.NullInt64
			counterName       sql.NullString
			counterValue      sql.NullInt64
		)

		if err := rows.Scan(&dagID, &vID, &vName,
			&taskID, &attemptID, &sampled, &runtimeMs,
			&counterName, &counterValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		if dag == nil || dag.ID != dagID {
			dag = &models.DAG{ID: dagID}
			job.DAGs = append(job.DAGs, dag)
			vertex, task = nil, nil
		}
		if !vID.Valid {
			continue
		}
		if vertex == nil || vertexID != vID.Int64 {
			vertex = &models.Vertex{Name: vName.String}
			vertexID = vID.Int64
			dag.Vertices = append(dag.Vertices, vertex)
			task = nil
		}
		if !taskID.Valid {
			continue
		}
		if task == nil || task.ID != taskID.String {
			task = &models.Task{
				ID:             taskID.String,
				AttemptID:      attemptID.String,
				Sampled:        sampled.Bool,
				TotalRuntimeMs: runtimeMs.Int64,
			}
			vertex.Tasks = append(vertex.Tasks, task)
		}
		if counterName.Valid {
			if task.Counters == nil {
				task.Counters = make(map[models.CounterName]int64)
			}
			task.Counters[models.CounterName(counterName.String)] = counterValue.Int64
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read task rows: %w", err)
	}
	return job, nil
}

// SaveJob stores a job snapshot in one transaction, replacing any previous copy
func (s *PostgresSource) SaveJob(ctx context.Context, job *models.Job) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, job.ID); err != nil {
		return fmt.Errorf("failed to replace job: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO jobs (id, name, succeeded, finished_at) VALUES ($1, $2, $3, $4)`,
		job.ID, job.Name, job.Succeeded, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	taskStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, vertex_id, attempt_id, position, sampled, total_runtime_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare task statement: %w", err)
	}
	defer taskStmt.Close()

	counterStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO task_counters (vertex_id, task_id, name, value) VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare counter statement: %w", err)
	}
	defer counterStmt.Close()

	for dagPos, dag := range job.DAGs {
		if dag == nil {
			continue
		}
		dagID := dag.ID
		if dagID == "" {
			dagID = fmt.Sprintf("%s_dag_%d", job.ID, dagPos+1)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dags (id, job_id, position) VALUES ($1, $2, $3)`,
			dagID, job.ID, dagPos,
		); err != nil {
			return fmt.Errorf("failed to insert dag %s: %w", dagID, err)
		}

		for vertexPos, vertex := range dag.Vertices {
			if vertex == nil {
				continue
			}
			var vertexID int64
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO vertices (job_id, dag_id, name, position) VALUES ($1, $2, $3, $4) RETURNING id`,
				job.ID, dagID, vertex.Name, vertexPos,
			).Scan(&vertexID); err != nil {
				return fmt.Errorf("failed to insert vertex %s: %w", vertex.Name, err)
			}

			for taskPos, task := range vertex.Tasks {
				if task == nil {
					continue
				}
				taskID := task.ID
				if taskID == "" {
					taskID = fmt.Sprintf("task_%d", taskPos)
				}
				if _, err := taskStmt.ExecContext(ctx,
					taskID, vertexID, task.AttemptID, taskPos, task.Sampled, task.TotalRuntimeMs,
				); err != nil {
					return fmt.Errorf("failed to insert task %s: %w", taskID, err)
				}
				for name, value := range task.Counters {
					if _, err := counterStmt.ExecContext(ctx, vertexID, taskID, string(name), value); err != nil {
						return fmt.Errorf("failed to insert counter %s: %w", name, err)
					}
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

// Close closes the database connection
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
