package runs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/extract"
	"resume-screener/internal/report"
	"resume-screener/internal/screening"
	"resume-screener/internal/shared/metrics"
	"resume-screener/internal/shared/storage/object"
	"resume-screener/internal/shared/telemetry"
)

// Service runs screening requests and keeps their results.
type Service struct {
	Analyzer screening.Analyzer
	Repo     Repo
	// Store receives uploaded files and their extracted text when Archive is set.
	Store       object.ObjectStore
	Archive     bool
	Concurrency int
	Now         func() time.Time
}

// AnalyzeUploads extracts text from uploaded files, screens the usable ones and
// persists the run. Files that yield no text are recorded as skipped.
func (s *Service) AnalyzeUploads(ctx context.Context, clientID string, job screening.JobContext, uploads []Upload) (Run, error) {
	if err := checkDescription(job.Description); err != nil {
		return Run{}, err
	}
	if len(uploads) == 0 {
		return Run{}, fmt.Errorf("%w: no files uploaded", ErrInvalidInput)
	}

	start := s.now()
	metrics.IncRunStarted()

	files, inputs, err := s.extractAll(ctx, clientID, uploads)
	if err != nil {
		metrics.IncRunFailed(metrics.StageExtract)
		return Run{}, err
	}
	if len(inputs) == 0 {
		metrics.IncRunFailed(metrics.StageNoValid)
		return Run{}, ErrNoValidResumes
	}

	return s.finish(ctx, clientID, job, inputs, files, start)
}

// AnalyzeTexts screens résumés whose text is already extracted and persists the run.
func (s *Service) AnalyzeTexts(ctx context.Context, clientID string, job screening.JobContext, resumes []screening.ResumeInput) (Run, error) {
	if err := screening.Validate(resumes, job); err != nil {
		return Run{}, err
	}

	start := s.now()
	metrics.IncRunStarted()

	inputs := make([]screening.ResumeInput, len(resumes))
	files := make([]File, len(resumes))
	for i, r := range resumes {
		text := extract.CleanText(r.RawText)
		contacts := extract.FindContacts(text)
		inputs[i] = screening.ResumeInput{
			DisplayName: r.DisplayName,
			RawText:     text,
			Email:       firstNonEmpty(r.Email, contacts.Email),
			Phone:       firstNonEmpty(r.Phone, contacts.Phone),
		}
		files[i] = File{Name: r.DisplayName, Status: FileAnalyzed, SizeBytes: int64(len(r.RawText))}
	}
	return s.finish(ctx, clientID, job, inputs, files, start)
}

func (s *Service) finish(ctx context.Context, clientID string, job screening.JobContext, inputs []screening.ResumeInput, files []File, start time.Time) (Run, error) {
	result, err := s.Analyzer.Analyze(ctx, inputs, job)
	if err != nil {
		metrics.IncRunFailed(metrics.StageAnalyze)
		if errors.Is(err, ErrInvalidInput) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("analyze: %w", err)
	}
	metrics.AddResumesAnalyzed(len(inputs))

	duration := float64(s.now().Sub(start).Microseconds()) / 1000.0
	run := Run{
		ID:             uuid.NewString(),
		ClientID:       clientID,
		Industry:       result.Industry,
		JobDescription: strings.TrimSpace(job.Description),
		Options:        job.Options,
		Results:        nonNilReports(result.Reports),
		Stats:          result.Stats,
		Files:          files,
		DurationMs:     duration,
		CreatedAt:      start.UTC(),
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		metrics.IncRunFailed(metrics.StageStore)
		return Run{}, fmt.Errorf("store run: %w", err)
	}

	metrics.IncRunCompleted()
	metrics.ObserveRunDurationMs(duration)
	telemetry.Info("run.completed", map[string]any{
		"run_id":      run.ID,
		"client_id":   clientID,
		"industry":    run.Industry,
		"resumes":     len(inputs),
		"skipped":     len(files) - len(inputs),
		"duration_ms": duration,
	})
	return run, nil
}

// extractAll returns one File per upload and the inputs for those that produced text, in upload order.
func (s *Service) extractAll(ctx context.Context, clientID string, uploads []Upload) ([]File, []screening.ResumeInput, error) {
	files := make([]File, len(uploads))
	texts := make([]string, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, up := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, text := s.extractOne(gctx, clientID, up)
			files[i] = file
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	inputs := make([]screening.ResumeInput, 0, len(uploads))
	for i, file := range files {
		if file.Status != FileAnalyzed {
			continue
		}
		contacts := extract.FindContacts(texts[i])
		inputs = append(inputs, screening.ResumeInput{
			DisplayName: file.Name,
			RawText:     texts[i],
			Email:       contacts.Email,
			Phone:       contacts.Phone,
		})
	}
	return files, inputs, nil
}

func (s *Service) extractOne(ctx context.Context, clientID string, up Upload) (File, string) {
	name := filepath.Base(strings.TrimSpace(up.Name))
	file := File{Name: name, Status: FileSkipped, SizeBytes: int64(len(up.Data))}

	if !supportedExtension(name) {
		file.Reason = "unsupported file type"
		metrics.IncFileSkipped(file.Reason)
		return file, ""
	}

	var (
		text string
		err  error
	)
	if s.Archive && s.Store != nil {
		key, _, _, saveErr := s.Store.Save(ctx, clientID, name, bytes.NewReader(up.Data))
		if saveErr != nil {
			telemetry.Warn("run.archive_failed", map[string]any{"file": name, "error": saveErr})
			text, err = extract.ExtractTextFromBytes(ctx, up.Data, up.ContentType, name)
		} else {
			file.StorageKey = key
			text, file.ExtractedKey, err = extract.ExtractText(ctx, s.Store, key, up.ContentType, name)
		}
	} else {
		text, err = extract.ExtractTextFromBytes(ctx, up.Data, up.ContentType, name)
	}

	if err == nil {
		text = extract.CleanText(text)
		if text == "" {
			err = extract.ErrEmpty
		}
	}
	if err != nil {
		file.Reason = skipReason(err)
		metrics.IncFileSkipped(file.Reason)
		telemetry.Warn("run.file_skipped", map[string]any{"file": name, "reason": file.Reason, "error": err})
		return file, ""
	}
	file.Status = FileAnalyzed
	return file, text
}

// Get returns a run owned by clientID.
func (s *Service) Get(ctx context.Context, clientID, id string) (Run, error) {
	if strings.TrimSpace(id) == "" {
		return Run{}, ErrNotFound
	}
	return s.Repo.Get(ctx, clientID, id)
}

// List returns the client's runs, newest first, without results.
func (s *Service) List(ctx context.Context, clientID string, limit, offset int) ([]Run, error) {
	return s.Repo.ListByClient(ctx, clientID, limit, offset)
}

// Results returns a run and the reports matching criteria. When rank is set the
// reports are ordered by descending score.
func (s *Service) Results(ctx context.Context, clientID, id string, criteria aggregate.Criteria, rank bool) (Run, []aggregate.Ranked, error) {
	run, err := s.Get(ctx, clientID, id)
	if err != nil {
		return Run{}, nil, err
	}
	filtered := aggregate.Filter(run.Results, criteria)
	if rank {
		return run, aggregate.Rank(filtered), nil
	}
	out := make([]aggregate.Ranked, len(filtered))
	for i, r := range filtered {
		out[i] = aggregate.Ranked{Report: r}
	}
	return run, out, nil
}

// Delete removes a run and any archived files it recorded.
func (s *Service) Delete(ctx context.Context, clientID, id string) error {
	run, err := s.Get(ctx, clientID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, clientID, id); err != nil {
		return err
	}
	if s.Store == nil {
		return nil
	}
	for _, f := range run.Files {
		for _, key := range []string{f.StorageKey, f.ExtractedKey} {
			if key == "" {
				continue
			}
			if err := s.Store.Delete(ctx, key); err != nil {
				telemetry.Warn("run.archive_delete_failed", map[string]any{"run_id": id, "key": key, "error": err})
			}
		}
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func checkDescription(desc string) error {
	if len([]rune(strings.TrimSpace(desc))) < screening.MinDescriptionLength {
		return fmt.Errorf("%w: job description is required and must be at least %d characters long", ErrInvalidInput, screening.MinDescriptionLength)
	}
	return nil
}

func supportedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range extract.SupportedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnsupported):
		return "unsupported file type"
	case errors.Is(err, extract.ErrEmpty):
		return "no text extracted"
	default:
		return "could not read file"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonNilReports(in []report.Report) []report.Report {
	if in == nil {
		return []report.Report{}
	}
	return in
}
