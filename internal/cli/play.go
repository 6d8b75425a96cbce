package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arguelab/sparr/internal/config"
	"github.com/arguelab/sparr/internal/logger"
	"github.com/arguelab/sparr/pkg/debate"
	"github.com/arguelab/sparr/pkg/provider"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
)

var (
	playTopic    string
	playPosition string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run an interactive debate on stdin",
	Long: `Play starts a single debate against the configured provider and reads
your arguments from stdin. In-session commands:

  /history   show the summary and retained turns
  /summary   ask for a post-hoc evaluation of the debate so far
  /end       end the debate and exit`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playTopic, "topic", "", "debate topic (required)")
	playCmd.Flags().StringVar(&playPosition, "position", "pro", "your side of the topic (pro or con)")
	playCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
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

	// Log to file only; the terminal belongs to the debate.
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

	manager := debate.NewManager(debate.NewMemoryStore(), llm, debate.Config{
		CompactionThreshold: cfg.Debate.CompactionThreshold,
		RetainTurns:         cfg.Debate.RetainTurns,
		ProviderTimeout:     time.Duration(cfg.Debate.ProviderTimeout) * time.Second,
		Temperature:         cfg.Debate.Temperature,
		MaxReplyTokens:      cfg.Debate.MaxReplyTokens,
		SummaryWordBudget:   cfg.Debate.SummaryWordBudget,
	})

	debateID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate debate id: %w", err)
	}

	ctx := context.Background()
	started, err := manager.StartDebate(ctx, debateID, playTopic, playPosition)
	if err != nil {
		return err
	}

	fmt.Printf("Debate %s\n", started.DebateID)
	fmt.Printf("Topic: %s\n", started.Topic)
	fmt.Printf("You argue %s, the opponent argues %s.\n\n", started.HumanPosition, started.AgentPosition)
	fmt.Println(started.OpeningPrompt)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/end", "/quit", "/exit":
			turns, err := manager.EndDebate(ctx, debateID)
			if err != nil {
				return err
			}
			fmt.Printf("Debate ended after %d exchanges.\n", turns)
			return nil

		case "/history":
			printHistory(ctx, manager, debateID)
			continue

		case "/summary":
			eval, err := manager.Summary(ctx, debateID)
			if err != nil {
				fmt.Printf("Evaluation unavailable: %v\n\n", err)
				continue
			}
			fmt.Printf("\n%s\n\n", eval)
			continue
		}

		result, err := manager.SendMessage(ctx, debateID, line)
		if err != nil {
			var provErr *debate.ProviderError
			if errors.As(err, &provErr) {
				fmt.Printf("The opponent could not answer (%v). Your message was not counted, try again.\n\n", provErr.Err)
				continue
			}
			return err
		}

		fmt.Printf("\n%s\n\n", result.Reply)
		if result.Compacted {
			fmt.Println("(older turns were condensed into the running summary)")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	// Stdin closed without /end; clean up the session.
	if _, err := manager.EndDebate(ctx, debateID); err != nil && !errors.Is(err, debate.ErrNotFound) {
		return err
	}
	return nil
}

func printHistory(ctx context.Context, manager *debate.Manager, debateID string) {
	history, err := manager.History(ctx, debateID)
	if err != nil {
		fmt.Printf("History unavailable: %v\n\n", err)
		return
	}

	fmt.Println()
	if history.HasSummary {
		fmt.Printf("Summary of earlier turns:\n%s\n\n", history.Summary)
	}
	for _, turn := range history.Turns {
		speaker := "you"
		if turn.Role == debate.RoleAgent {
			speaker = "opponent"
		}
		fmt.Printf("[%d] %s: %s\n", turn.Seq, speaker, turn.Text)
	}
	fmt.Printf("\n%d exchanges so far.\n\n", history.TurnCount)
}
