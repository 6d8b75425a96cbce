package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/arguelab/sparr/internal/config"
	"github.com/arguelab/sparr/internal/logger"
	"github.com/arguelab/sparr/pkg/debate"
	"github.com/arguelab/sparr/pkg/provider"
	"github.com/spf13/cobra"
)

var topicsCount int

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Suggest debate topics",
	Long: `Topics asks the configured provider for a batch of debate topics. If the
provider is unreachable or returns an unusable payload, a built-in list is
printed instead.`,
	RunE: runTopics,
}

func init() {
	topicsCmd.Flags().IntVar(&topicsCount, "count", 0, "number of topics (default from config)")
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   false,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	llm, err := provider.New(provider.Profile{
		Provider: cfg.Provider.Provider,
		APIKey:   cfg.Provider.APIKey,
		Model:    cfg.Provider.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	count := topicsCount
	if count <= 0 {
		count = cfg.Topics.Count
	}

	generator := debate.NewTopicGenerator(llm, time.Duration(cfg.Debate.ProviderTimeout)*time.Second)
	result := generator.Generate(context.Background(), count)

	if result.UsedFallback {
		fmt.Println("Provider unavailable, suggesting from the built-in list:")
	}
	for i, topic := range result.Topics {
		fmt.Printf("%2d. %s\n", i+1, topic)
	}
	return nil
}
