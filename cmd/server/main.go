package main

import (
	"fmt"
	"os"

	"github.com/rahul4469/propmate/internal/config"
	"github.com/rahul4469/propmate/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	logLevel   string
	openAIKey  string
	tavilyKey  string
	modelFlag  string
	jsonOutput bool

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "propmate",
	Short: "PropMate - property valuation, loan offers and a property assistant",
	Long: `PropMate estimates property values, compares home loan offers from major
Indian banks and answers property questions through an AI assistant.

Run "propmate serve" to start the JSON API, or use the one-shot commands
to exercise a single feature from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnvFile()

		level := logLevel
		if level == "" {
			level = os.Getenv("LOG_LEVEL")
		}
		if level == "" {
			level = "warn"
		}

		var err error
		logger, err = logging.New(level, os.Getenv("APP_ENV") != "production")
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or warn)")
	rootCmd.PersistentFlags().StringVar(&openAIKey, "openai-key", "", "OpenAI API key (overrides $OPENAI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&tavilyKey, "tavily-key", "", "Tavily API key (overrides $TAVILY_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "OpenAI model (overrides $OPENAI_MODEL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd, searchCmd, chatCmd, offersCmd, emiCmd, analyzeCmd)
}

// settings layers command line flags over the environment.
func settings() config.Source {
	flags := config.Static{}
	if openAIKey != "" {
		flags[config.OpenAIAPIKeyName] = openAIKey
	}
	if tavilyKey != "" {
		flags[config.TavilyAPIKeyName] = tavilyKey
	}
	if modelFlag != "" {
		flags[config.OpenAIModelName] = modelFlag
	}
	return config.Overlay{Primary: flags, Fallback: config.Env{}}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
