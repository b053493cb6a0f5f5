package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"resume-screener/internal/bootstrap"
	"resume-screener/internal/screening"
	"resume-screener/internal/shared/config"
	"resume-screener/internal/shared/telemetry"
	"resume-screener/internal/taxonomy"
)

const (
	app       = "screen"
	envPrefix = "SCREEN"
)

// Config is the file and environment configuration shared by every command.
type Config struct {
	Taxonomy        string        `mapstructure:"taxonomy"`
	DefaultIndustry string        `mapstructure:"default-industry"`
	MatchMode       string        `mapstructure:"match-mode"`
	Concurrency     int           `mapstructure:"concurrency"`
	Remote          string        `mapstructure:"remote"`
	ClientID        string        `mapstructure:"client-id"`
	Salary          *SalaryConfig `mapstructure:"salary"`
}

// SalaryConfig overrides the salary model. Omitted numbers keep the
// built-in defaults; an explicit 0 is applied as given.
type SalaryConfig struct {
	Currency            string `mapstructure:"currency"`
	Base                *int   `mapstructure:"base"`
	TechnicalWeight     *int   `mapstructure:"technical-weight"`
	CertificationWeight *int   `mapstructure:"certification-weight"`
}

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "screen scores résumés against a job description by industry skill taxonomy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig()
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is screen.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json-log", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("taxonomy", "", "path to an industry taxonomy JSON file (default is the embedded taxonomy)")
	rootCmd.PersistentFlags().String("default-industry", "", "industry used when none is given or detected")
	rootCmd.PersistentFlags().String("match-mode", string(screening.MatchSubstring), "skill matching mode: substring or word")
	rootCmd.PersistentFlags().Int("concurrency", 4, "number of résumés analyzed in parallel")
	rootCmd.PersistentFlags().String("remote", "", "base URL of a screening service; analysis runs there instead of in process")
	rootCmd.PersistentFlags().String("client-id", "", "X-Client-Id sent to the remote service")

	for _, name := range []string{"debug", "json-log", "taxonomy", "default-industry", "match-mode", "concurrency", "remote", "client-id"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// initConfig reads the config file when one is given or present. A missing
// default file is not an error.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func getConfig() (*Config, error) {
	var cfg *Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg, nil
}

// newLogger builds the CLI logger and routes service logs through it.
func newLogger() (*zap.Logger, func(), error) {
	logger, err := telemetry.NewCLI(viper.GetBool("json-log"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, err
	}
	restore := telemetry.SetLogger(logger)
	return logger, func() {
		_ = logger.Sync()
		restore()
	}, nil
}

func loadTaxonomy(cfg *Config) (*taxonomy.Taxonomy, error) {
	return bootstrap.LoadTaxonomy(cfg.Taxonomy, strings.ToLower(strings.TrimSpace(cfg.DefaultIndustry)))
}

func engineConfig(cfg *Config) (screening.Config, error) {
	appCfg := config.Config{
		MatchMode:         cfg.MatchMode,
		WorkerConcurrency: cfg.Concurrency,
	}
	if cfg.Salary != nil {
		appCfg.SalaryCurrency = cfg.Salary.Currency
		appCfg.SalaryBase = cfg.Salary.Base
		appCfg.SalaryTechnicalWeight = cfg.Salary.TechnicalWeight
		appCfg.SalaryCertificationWeight = cfg.Salary.CertificationWeight
	}
	return bootstrap.EngineConfig(appCfg)
}
