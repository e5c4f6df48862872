package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/slipscan/internal/pipeline"
)

// documentCmd represents the document command.
var documentCmd = &cobra.Command{
	Use:   "document [image files...]",
	Short: "Extract holder data from identity document photographs",
	Long: `Process one or more identity document images and extract the document
number, holder names, and dates.

Examples:
  slipscan document cedula.jpg
  slipscan document front.png --format json`,
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

		results := make(map[string]*pipeline.DocumentResult, len(args))
		for _, path := range args {
			img, err := loadImageFile(path)
			if err != nil {
				return err
			}
			res, err := p.ExtractDocument(img)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", path, err)
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
			fmt.Fprintf(w, "%s:\n", path)
			fmt.Fprintf(w, "  document_number: %s\n", orUnset(res.Record.DocumentNumber))
			fmt.Fprintf(w, "  full_name:       %s\n", orUnset(res.Record.FullName))
			fmt.Fprintf(w, "  date_of_birth:   %s\n", orUnset(res.Record.DateOfBirth))
			fmt.Fprintf(w, "  expiration_date: %s\n", orUnset(res.Record.ExpirationDate))
			fmt.Fprintf(w, "  nationality:     %s\n", orUnset(res.Record.Nationality))
			fmt.Fprintf(w, "  confidence: %.1f\n", res.Confidence)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	documentCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
