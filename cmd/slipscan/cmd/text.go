package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/slipscan/internal/pipeline"
)

// textCmd represents the text command.
var textCmd = &cobra.Command{
	Use:   "text [image files...]",
	Short: "Recognize plain text from images without field extraction",
	Long: `Run preprocessing and OCR on images and print the recognized text.

Examples:
  slipscan text scan.jpg
  slipscan text scan.jpg --format json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		format, _ := cmd.Flags().GetString("format")
		if err := validateOutputFormat(format); err != nil {
			return err
		}
		outputFile, _ := cmd.Flags().GetString("output")

		p, err := buildPipeline(cmd)
		if err != nil {
			return err
		}

		results := make(map[string]*pipeline.TextResult, len(args))
		for _, path := range args {
			img, err := loadImageFile(path)
			if err != nil {
				return err
			}
			res, err := p.ExtractText(img)
			if err != nil {
				return fmt.Errorf("recognizing %s: %w", path, err)
			}
			results[path] = res
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout(), outputFile)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		if format == outputFormatJSON {
			return writeJSONOutput(w, results)
		}
		for _, path := range args {
			res := results[path]
			if len(args) > 1 {
				fmt.Fprintf(w, "=== %s ===\n", path)
			}
			fmt.Fprintln(w, res.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(textCmd)
	textCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	textCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
