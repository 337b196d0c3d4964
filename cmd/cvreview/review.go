package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"alfredoptarigan/cv-reviewer/internal/client"
	"alfredoptarigan/cv-reviewer/internal/render"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a PDF CV against a job description",
	Long:  "Upload a PDF CV and a job description text file to the review API and print the report as text or JSON.",
	RunE:  runReview,
}

var reviewConfig = viper.New()

func init() {
	reviewCmd.Flags().String("cv", "", "Path to the CV PDF (required)")
	reviewCmd.Flags().String("job", "", "Path to a text file holding the job description (required)")
	reviewCmd.Flags().Bool("json", false, "Print the raw JSON report")
	reviewCmd.Flags().String("url", "", "Review endpoint (overrides BACKEND_API_URL)")
	reviewCmd.Flags().String("token", "", "Bearer token (overrides API_AUTH_TOKEN)")
	_ = reviewCmd.MarkFlagRequired("cv")
	_ = reviewCmd.MarkFlagRequired("job")

	_ = reviewConfig.BindPFlag("url", reviewCmd.Flags().Lookup("url"))
	_ = reviewConfig.BindPFlag("token", reviewCmd.Flags().Lookup("token"))
	_ = reviewConfig.BindEnv("url", "BACKEND_API_URL")
	_ = reviewConfig.BindEnv("token", "API_AUTH_TOKEN")
	reviewConfig.SetDefault("url", "http://localhost:8000/api/review")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	cvPath, _ := cmd.Flags().GetString("cv")
	jobPath, _ := cmd.Flags().GetString("job")
	asJSON, _ := cmd.Flags().GetBool("json")

	if !strings.EqualFold(filepath.Ext(cvPath), ".pdf") {
		return fmt.Errorf("CV must be a .pdf file, got %q", cvPath)
	}

	pdf, err := os.ReadFile(cvPath)
	if err != nil {
		return fmt.Errorf("failed to read CV: %w", err)
	}

	job, err := os.ReadFile(jobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	jobDescription := strings.TrimSpace(string(job))
	if jobDescription == "" {
		return fmt.Errorf("job description file %q is empty", jobPath)
	}

	c, err := client.NewReviewClient(reviewConfig.GetString("url"), reviewConfig.GetString("token"), nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr, "Contacting AI Backend... This may take a moment.")
	result, err := c.Review(ctx, pdf, filepath.Base(cvPath), jobDescription)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return render.Text(cmd.OutOrStdout(), result)
}
