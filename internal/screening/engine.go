package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/report"
	"resume-screener/internal/taxonomy"
)

// ErrInvalidInput is returned when a request fails validation before analysis.
var ErrInvalidInput = errors.New("invalid input")

// MinDescriptionLength is the shortest accepted job description, after trimming.
const MinDescriptionLength = 10

// Analyze screens every résumé against the job and computes corpus statistics.
// It runs sequentially and performs no validation.
func Analyze(resumes []ResumeInput, job JobContext, tax *taxonomy.Taxonomy, cfg Config) Result {
	job = resolveJob(job, tax)
	set := tax.Skills(job.Industry)
	reports := make([]report.Report, len(resumes))
	for i, r := range resumes {
		reports[i] = Compose(r, job, set, cfg)
	}
	return Result{
		Industry: job.Industry,
		Reports:  reports,
		Stats:    aggregate.ComputeStats(reports),
	}
}

// Engine is the embedded Analyzer. It validates requests and fans résumés out
// across a bounded set of goroutines.
type Engine struct {
	Taxonomy *taxonomy.Taxonomy
	Config   Config
}

// NewEngine constructs an Engine. A nil taxonomy selects the embedded default.
func NewEngine(tax *taxonomy.Taxonomy, cfg Config) *Engine {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Engine{Taxonomy: tax, Config: cfg}
}

// Analyze implements Analyzer.
func (e *Engine) Analyze(ctx context.Context, resumes []ResumeInput, job JobContext) (Result, error) {
	if err := Validate(resumes, job); err != nil {
		return Result{}, err
	}
	job = resolveJob(job, e.Taxonomy)
	set := e.Taxonomy.Skills(job.Industry)

	reports := make([]report.Report, len(resumes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Config.Concurrency, 1))
	for i, r := range resumes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = Compose(r, job, set, e.Config)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Industry: job.Industry,
		Reports:  reports,
		Stats:    aggregate.ComputeStats(reports),
	}, nil
}

// DetectIndustry exposes industry detection against the engine's taxonomy.
func (e *Engine) DetectIndustry(text string) string {
	return DetectIndustry(text, e.Taxonomy)
}

var _ Analyzer = (*Engine)(nil)

type analyzeRequest struct {
	Description string        `validate:"min=10"`
	Resumes     []ResumeInput `validate:"min=1,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a request before it reaches the engine.
func Validate(resumes []ResumeInput, job JobContext) error {
	req := analyzeRequest{
		Description: strings.TrimSpace(job.Description),
		Resumes:     resumes,
	}
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Description":
		return fmt.Sprintf("job description must be at least %d characters", MinDescriptionLength)
	case "Resumes":
		return "at least one resume is required"
	case "DisplayName":
		return "every resume needs a name"
	default:
		return fe.Error()
	}
}

func resolveJob(job JobContext, tax *taxonomy.Taxonomy) JobContext {
	if strings.TrimSpace(job.Industry) == "" {
		job.Industry = DetectIndustry(job.Description, tax)
	} else {
		job.Industry = tax.Resolve(job.Industry)
	}
	return job
}
