package runs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/report"
	"resume-screener/internal/screening"
	"resume-screener/internal/shared/storage/db"
)

func sampleRun(id, clientID string, createdAt time.Time) Run {
	results := []report.Report{{
		Name:            "jane.pdf",
		Email:           "jane@example.com",
		Phone:           "Not found",
		Industry:        "technology",
		FoundSkills:     report.Skills{Technical: []string{"Python"}, Soft: []string{"communication"}},
		Score:           3,
		RelevanceScore:  report.Int(50),
		ExperienceLevel: report.Int(2),
		JDSkillMatches:  report.Int(1),
		Summary:         "This resume shows a score of 3, indicating moderate alignment with the job description. ",
	}}
	return Run{
		ID:             id,
		ClientID:       clientID,
		Industry:       "technology",
		JobDescription: "Python developer with communication skills",
		Options:        screening.Options{SkillGaps: true},
		Results:        results,
		Stats:          aggregate.ComputeStats(results),
		Files:          []File{{Name: "jane.pdf", Status: FileAnalyzed, SizeBytes: 10}},
		DurationMs:     12.5,
		CreatedAt:      createdAt,
	}
}

func TestSQLRepoCreatePostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := &SQLRepo{DB: sqlDB, Dialect: db.DialectPostgres}
	created := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	run := sampleRun("run-1", "client-1", created)

	mock.ExpectExec(`INSERT INTO screening_runs .* VALUES \(\$1, \$2`).
		WithArgs(
			run.ID,
			run.ClientID,
			run.Industry,
			run.JobDescription,
			`{"deepAnalysis":false,"skillGaps":true,"salaryInsights":false,"cultureFit":false}`,
			sqlmock.AnyArg(), // results
			sqlmock.AnyArg(), // stats
			`[{"name":"jane.pdf","status":"analyzed","sizeBytes":10}]`,
			run.DurationMs,
			created,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoGetNotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := &SQLRepo{DB: sqlDB, Dialect: db.DialectPostgres}
	mock.ExpectQuery("SELECT id, client_id, industry").
		WithArgs("client-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Get(context.Background(), "client-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoGetDecodesColumns(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := &SQLRepo{DB: sqlDB, Dialect: db.DialectPostgres}
	created := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "client_id", "industry", "job_description", "options", "results", "stats", "files", "duration_ms", "created_at"}).
		AddRow(
			"run-1", "client-1", "finance", "Audit and compliance lead",
			[]byte(`{"salaryInsights":true}`),
			[]byte(`[{"name":"a.txt","email":"Not found","phone":"Not found","industry":"finance","foundSkills":{"technical":[],"soft":[],"certifications":["CPA"]},"score":1.5,"salaryEstimate":"₱22,000","summary":"x"}]`),
			[]byte(`{"total":1,"avgScore":1.5}`),
			[]byte(`[{"name":"a.txt","status":"analyzed","sizeBytes":3},{"name":"b.exe","status":"skipped","reason":"unsupported file type","sizeBytes":4}]`),
			7.25,
			created,
		)
	mock.ExpectQuery("SELECT id, client_id, industry").
		WithArgs("client-1", "run-1").
		WillReturnRows(rows)

	run, err := repo.Get(context.Background(), "client-1", "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !run.Options.SalaryInsights || run.Options.SkillGaps {
		t.Fatalf("unexpected options: %+v", run.Options)
	}
	if len(run.Results) != 1 || run.Results[0].Score != 1.5 || *run.Results[0].SalaryEstimate != "₱22,000" {
		t.Fatalf("unexpected results: %+v", run.Results)
	}
	if run.Stats.Total != 1 || len(run.Files) != 2 || run.Files[1].Status != FileSkipped {
		t.Fatalf("unexpected stats/files: %+v %+v", run.Stats, run.Files)
	}
	if !run.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", run.CreatedAt)
	}
}

func TestSQLRepoDeleteMissing(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := &SQLRepo{DB: sqlDB, Dialect: db.DialectPostgres}
	mock.ExpectExec("DELETE FROM screening_runs").
		WithArgs("client-1", "run-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "client-1", "run-x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepoSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	sqlDB, dialect, err := db.Connect(ctx, "sqlite::memory:", db.DefaultMigrateOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	repo := &SQLRepo{DB: sqlDB, Dialect: dialect}
	base := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := repo.Create(ctx, sampleRun(id, "client-1", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if err := repo.Create(ctx, sampleRun("run-other", "client-2", base)); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	got, err := repo.Get(ctx, "client-1", "run-b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := sampleRun("run-b", "client-1", base.Add(time.Minute))
	if got.JobDescription != want.JobDescription || got.Stats != want.Stats || len(got.Results) != 1 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Results[0].Relevance() != 50 || got.Results[0].FoundSkills.Technical[0] != "Python" {
		t.Fatalf("unexpected report: %+v", got.Results[0])
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}

	if _, err := repo.Get(ctx, "client-2", "run-b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("runs must be scoped to their client, got %v", err)
	}

	list, err := repo.ListByClient(ctx, "client-1", 2, 0)
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(list) != 2 || list[0].ID != "run-c" || list[1].ID != "run-b" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[0].Results != nil {
		t.Fatalf("list should not carry results")
	}

	if err := repo.Delete(ctx, "client-1", "run-c"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, err = repo.ListByClient(ctx, "client-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByClient after delete: %v", err)
	}
	if len(list) != 2 || list[0].ID != "run-b" {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
}
