package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"askpdf/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askDoc string

// askCmd asks one question against an already uploaded document.
var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask a single question about an uploaded PDF",
	Long: `Sends one question to the service for a document that was
previously uploaded, and prints the answer.

Example:
  askpdf ask --doc report "What are the main conclusions?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	client := service.NewClient(cfg.ServerURL, time.Duration(cfg.TimeoutSecs)*time.Second)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.TimeoutSecs)*time.Second)
	defer cancel()

	logger.Info("Asking question", zap.String("doc", askDoc), zap.String("question", question))
	answer, err := client.Ask(ctx, askDoc, question)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
