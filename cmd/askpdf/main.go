package main

import (
	"fmt"
	"os"
	"time"

	"askpdf/cmd/askpdf/chat"
	"askpdf/internal/config"
	"askpdf/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	serverURL string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "askpdf",
	Short: "askpdf - Chat with your PDF documents",
	Long: `askpdf uploads a PDF to a question-answering service and lets you
converse with it, with answers typed out as they arrive.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "askpdf" && cmd.CalledAs() == "askpdf" {
			return nil
		}

		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Service base URL (default from config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default from config)")

	askCmd.Flags().StringVar(&askDoc, "doc", "", "Document reference of an already uploaded PDF (required)")
	askCmd.MarkFlagRequired("doc")

	// Add commands to root
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration from file, environment,
// and command line flags.
func loadConfig() (*config.UserConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if timeout > 0 {
		cfg.TimeoutSecs = int(timeout / time.Second)
	}
	return cfg, nil
}

// runInteractiveChat starts the interactive chat interface
func runInteractiveChat() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(config.Dir(), cfg.Debug); err != nil {
		return err
	}
	logging.Boot("starting interactive chat, server=%s", cfg.ServerURL)

	p := tea.NewProgram(
		chat.InitChat(cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
