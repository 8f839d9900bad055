package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deadly-nightshade/medguard/internal/pipeline"
)

var (
	analyzePrompt    string
	analyzeOutput    string
	analyzeFile      string
	analyzeDocuments string
	analyzeTimeout   time.Duration
	analyzeJSONOut   string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one model output for hallucination and compliance risk",
	Long: `Analyze runs the full pipeline over a single (prompt, output) pair:
claim extraction and verification, citation checks, PHI and drug-safety
scanning, and the combined risk assessment.

The output text comes from --output, or from --file ("-" for stdin).

Example:
  medguard analyze --prompt "Is aspirin safe?" --output "Aspirin is safe for everyone."
  medguard analyze --prompt "Summarize" --file response.txt --json report.json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzePrompt, "prompt", "", "original prompt given to the model")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "model output to analyze")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read the model output from a file (\"-\" for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeDocuments, "documents", "", "optional source documents the output should be faithful to")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&analyzeJSONOut, "json", "", "write the report JSON to this path instead of stdout")

	_ = analyzeCmd.MarkFlagRequired("prompt")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	output := analyzeOutput
	if analyzeFile != "" {
		data, err := readInput(analyzeFile)
		if err != nil {
			return err
		}
		output = data
	}
	if output == "" && analyzeOutput == "" && analyzeFile == "" {
		return fmt.Errorf("either --output or --file is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	analyzer, err := pipeline.NewAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %d characters of output\n", len(output))
	}

	report := analyzer.Analyze(ctx, analyzePrompt, output, analyzeDocuments)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Verified %d claims\n", len(report.Hallucination.ClaimVerdicts))
		fmt.Fprintf(os.Stderr, "✓ Hallucination risk: %s (confidence %d/100)\n",
			report.Hallucination.RiskLevel, report.Hallucination.ConfidenceScore)
		fmt.Fprintf(os.Stderr, "✓ Compliance: %s (score %d/100)\n",
			report.Compliance.OverallStatus, report.Compliance.Score)
		fmt.Fprintf(os.Stderr, "✓ Overall risk: %s\n", report.Combined.OverallRiskLevel)
		fmt.Fprintln(os.Stderr)
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if analyzeJSONOut != "" {
		if err := os.WriteFile(analyzeJSONOut, append(encoded, '\n'), 0644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", analyzeJSONOut)
		return nil
	}

	fmt.Println(string(encoded))
	return nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
