package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"askpdf/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// uploadCmd uploads a PDF without entering the interactive interface.
var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a PDF to the service",
	Long: `Uploads a single PDF so it can be queried later, either
interactively or with the ask command.

Example:
  askpdf upload report.pdf
  askpdf ask --doc report "What is this document about?"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	client := service.NewClient(cfg.ServerURL, time.Duration(cfg.TimeoutSecs)*time.Second)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.TimeoutSecs)*time.Second)
	defer cancel()

	logger.Info("Uploading document", zap.String("file", path))
	docRef, err := client.UploadDocument(ctx, path, f)
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %s as %q\n", path, docRef)
	fmt.Printf("Ask questions with: askpdf ask --doc %s \"your question\"\n", docRef)
	return nil
}
