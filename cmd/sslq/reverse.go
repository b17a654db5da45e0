package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/vision"
)

func newReversePromptsCmd() *cobra.Command {
	var (
		glob       string
		out        string
		model      string
		baseURL    string
		apiKey     string
		prompt     string
		pace       time.Duration
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:          "reverse-prompts",
		Short:        "Describe images into a resumable reverse-prompt CSV",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := apiKey
			if key == "" {
				key = os.Getenv("OPENAI_API_KEY")
			}
			if key == "" {
				return errors.New("api key required: pass --api-key or set OPENAI_API_KEY")
			}

			client := vision.New(vision.Config{
				APIKey:     key,
				BaseURL:    baseURL,
				Model:      model,
				Prompt:     prompt,
				MaxRetries: maxRetries,
			})
			sum, err := client.RunBatch(cmd.Context(), vision.BatchOptions{
				Glob:   glob,
				OutCSV: out,
				Pace:   pace,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d matched, %d skipped, %d written, %d failed -> %s\n",
				sum.Matched, sum.Skipped, sum.Written, sum.Failed, out)
			if sum.Failed > 0 {
				return fmt.Errorf("%d images failed", sum.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&glob, "images", "", "glob of images to describe, e.g. 'images/*.png'")
	cmd.Flags().StringVar(&out, "out", "reverse_prompts.csv", "output CSV, appended to on reruns")
	cmd.Flags().StringVar(&model, "model", "", "chat model (default: client default)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible endpoint base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (default: OPENAI_API_KEY env)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "override the standard reverse-prompt instruction")
	cmd.Flags().DurationVar(&pace, "pace", 200*time.Millisecond, "delay between calls")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "attempts per image on transient errors")

	_ = cmd.MarkFlagRequired("images")
	return cmd
}
