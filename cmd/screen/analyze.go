package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/extract"
	"resume-screener/internal/remote"
	"resume-screener/internal/runs"
	"resume-screener/internal/screening"
)

const localClientID = "cli"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] FILE|DIR...",
	Short: "Screen résumé files against a job description",
	Long: "Extracts text from PDF, DOCX and TXT résumés, scores them against the job description " +
		"and prints the reports. Directories are scanned one level deep for supported files.",
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeJob            string
	analyzeJobFile        string
	analyzeIndustry       string
	analyzeDeepAnalysis   bool
	analyzeSkillGaps      bool
	analyzeSalaryInsights bool
	analyzeCultureFit     bool
	analyzeFormat         string
	analyzeOutput         string
	analyzeScore          string
	analyzeRelevance      string
	analyzeExperience     string
	analyzeSkill          string
	analyzeRank           bool
	analyzeLegacyBands    bool
)

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVar(&analyzeJob, "job", "", "job description text")
	flags.StringVar(&analyzeJobFile, "job-file", "", "path to a file holding the job description")
	flags.StringVar(&analyzeIndustry, "industry", "", "industry to screen for (default is detected from the job description)")
	flags.BoolVar(&analyzeDeepAnalysis, "deep-analysis", false, "record the deep analysis option")
	flags.BoolVar(&analyzeSkillGaps, "skill-gaps", false, "report missing skills per résumé")
	flags.BoolVar(&analyzeSalaryInsights, "salary-insights", false, "estimate a monthly salary per résumé")
	flags.BoolVar(&analyzeCultureFit, "culture-fit", false, "estimate culture fit per résumé")
	flags.StringVarP(&analyzeFormat, "format", "f", formatTable, "output format: table, json or csv")
	flags.StringVarP(&analyzeOutput, "out", "o", "", "write the output to a file instead of stdout")
	flags.StringVar(&analyzeScore, "score", "", "keep only reports in this score band: high, medium or low")
	flags.StringVar(&analyzeRelevance, "relevance", "", "keep only reports in this relevance band: high, medium or low")
	flags.StringVar(&analyzeExperience, "experience", "", "keep only reports with this experience level (1-5)")
	flags.StringVar(&analyzeSkill, "skill", "", "keep only reports with technical, soft, certifications, jd_specific or none")
	flags.BoolVar(&analyzeRank, "rank", false, "order reports by score and award badges")
	flags.BoolVar(&analyzeLegacyBands, "legacy-bands", false, "use the 10/5 score band thresholds")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, done, err := newLogger()
	if err != nil {
		return err
	}
	defer done()

	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	description, err := jobDescription(analyzeJob, analyzeJobFile)
	if err != nil {
		return err
	}
	format, err := parseFormat(analyzeFormat)
	if err != nil {
		return err
	}
	criteria, err := aggregate.ParseCriteria(analyzeScore, analyzeRelevance, analyzeExperience, analyzeSkill)
	if err != nil {
		return err
	}
	if analyzeLegacyBands {
		criteria.ScoreBands = aggregate.LegacyBands
	}

	uploads, err := collectUploads(args)
	if err != nil {
		return err
	}

	analyzer, clientID, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	svc := &runs.Service{
		Analyzer:    analyzer,
		Repo:        runs.NewMemoryRepo(),
		Concurrency: max(cfg.Concurrency, 1),
	}

	job := screening.JobContext{
		Description: description,
		Industry:    strings.ToLower(strings.TrimSpace(analyzeIndustry)),
		Options: screening.Options{
			DeepAnalysis:   analyzeDeepAnalysis,
			SkillGaps:      analyzeSkillGaps,
			SalaryInsights: analyzeSalaryInsights,
			CultureFit:     analyzeCultureFit,
		},
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	run, err := svc.AnalyzeUploads(ctx, clientID, job, uploads)
	if err != nil {
		return err
	}
	for _, f := range run.Files {
		if f.Status == runs.FileSkipped {
			logger.Warn("file skipped", zap.String("file", f.Name), zap.String("reason", f.Reason))
		}
	}

	_, ranked, err := svc.Results(ctx, clientID, run.ID, criteria, analyzeRank)
	if err != nil {
		return err
	}
	logger.Debug("analysis finished",
		zap.String("industry", run.Industry),
		zap.Int("files", len(run.Files)),
		zap.Int("reports", len(run.Results)),
		zap.Int("shown", len(ranked)),
		zap.Float64("duration_ms", run.DurationMs),
	)

	out := cmd.OutOrStdout()
	if analyzeOutput != "" {
		f, err := os.Create(analyzeOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeRun(out, format, run, ranked)
}

func buildAnalyzer(cfg *Config, logger *zap.Logger) (screening.Analyzer, string, error) {
	if strings.TrimSpace(cfg.Remote) != "" {
		clientID := strings.TrimSpace(cfg.ClientID)
		client, err := remote.NewClient(cfg.Remote, remote.WithClientID(clientID))
		if err != nil {
			return nil, "", err
		}
		logger.Debug("using remote analyzer", zap.String("url", cfg.Remote))
		if clientID == "" {
			clientID = localClientID
		}
		return client, clientID, nil
	}

	tax, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, "", err
	}
	engineCfg, err := engineConfig(cfg)
	if err != nil {
		return nil, "", err
	}
	return screening.NewEngine(tax, engineCfg), localClientID, nil
}

func jobDescription(text, path string) (string, error) {
	if strings.TrimSpace(text) != "" && path != "" {
		return "", fmt.Errorf("use either --job or --job-file, not both")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read job description: %w", err)
		}
		return string(raw), nil
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("a job description is required: pass --job or --job-file")
	}
	return text, nil
}

// collectUploads reads every named file. Directories contribute their supported
// files in name order; explicit files are passed through so unsupported ones are
// reported as skipped.
func collectUploads(paths []string) ([]runs.Upload, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !supported(e.Name()) {
				continue
			}
			found = append(found, filepath.Join(p, e.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no résumé files found in %s", strings.Join(paths, ", "))
	}

	uploads := make([]runs.Upload, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, runs.Upload{Name: filepath.Base(f), Data: data})
	}
	return uploads, nil
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range extract.SupportedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
