package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mfenderov/sentiscore/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "sentiscore",
	Short: "Sentiscore: review sentiment scoring service",
	Long: `Sentiscore fetches the public review page for a business keyword,
rates every review 1-5 with a pretrained sentiment model and reports the
average on a 0-10 scale.

Commands:
  serve   Start the HTTP scoring service
  score   Score a single keyword from the command line
  mcp     Expose get_score as an MCP tool over stdio`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := parseLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/sentiscore")
		viper.AddConfigPath(".")
	}

	// SENTISCORE_SENTIMENT_BACKEND -> sentiment.backend
	viper.SetEnvPrefix("SENTISCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("log.level", "SENTISCORE_LOG_LEVEL")
	viper.BindEnv("server.addr", "SENTISCORE_SERVER_ADDR")
	viper.BindEnv("server.request_timeout", "SENTISCORE_SERVER_REQUEST_TIMEOUT")
	viper.BindEnv("target.url_template", "SENTISCORE_TARGET_URL_TEMPLATE")
	viper.BindEnv("scraper.timeout", "SENTISCORE_SCRAPER_TIMEOUT")
	viper.BindEnv("scraper.user_agent", "SENTISCORE_SCRAPER_USER_AGENT")
	viper.BindEnv("scraper.max_fragments", "SENTISCORE_SCRAPER_MAX_FRAGMENTS")
	viper.BindEnv("extractor.strategy", "SENTISCORE_EXTRACTOR_STRATEGY")
	viper.BindEnv("sentiment.backend", "SENTISCORE_SENTIMENT_BACKEND")
	viper.BindEnv("sentiment.concurrency", "SENTISCORE_SENTIMENT_CONCURRENCY")
	viper.BindEnv("sentiment.classifier.base_url", "SENTISCORE_SENTIMENT_CLASSIFIER_BASE_URL")
	viper.BindEnv("sentiment.classifier.socket_path", "SENTISCORE_SENTIMENT_CLASSIFIER_SOCKET_PATH")
	viper.BindEnv("sentiment.llm.socket_path", "SENTISCORE_SENTIMENT_LLM_SOCKET_PATH")
	viper.BindEnv("sentiment.llm.model", "SENTISCORE_SENTIMENT_LLM_MODEL")
	viper.BindEnv("notify.enabled", "SENTISCORE_NOTIFY_ENABLED")
	viper.BindEnv("notify.host", "SENTISCORE_NOTIFY_HOST")
	viper.BindEnv("notify.port", "SENTISCORE_NOTIFY_PORT")
	viper.BindEnv("notify.username", "SENTISCORE_NOTIFY_USERNAME")
	viper.BindEnv("notify.password", "SENTISCORE_NOTIFY_PASSWORD", "EMAIL_PASSWORD")
	viper.BindEnv("notify.from", "SENTISCORE_NOTIFY_FROM")
	viper.BindEnv("mcp.name", "SENTISCORE_MCP_NAME")
	viper.BindEnv("mcp.version", "SENTISCORE_MCP_VERSION")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Lists arrive as comma-separated strings from env
	if origins := splitList(os.Getenv("SENTISCORE_SERVER_ALLOWED_ORIGINS")); len(origins) > 0 {
		cfg.Server.AllowedOrigins = origins
	}
	if rcpts := splitList(os.Getenv("SENTISCORE_NOTIFY_RECIPIENTS")); len(rcpts) > 0 {
		cfg.Notify.Recipients = rcpts
	}
}

// splitList splits a comma-separated value, trimming entries and dropping
// empty ones.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
