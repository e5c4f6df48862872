package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/slipscan/internal/pipeline"
)

// ticketCmd represents the ticket command.
var ticketCmd = &cobra.Command{
	Use:   "ticket [image files...]",
	Short: "Extract structured fields from betting ticket photographs",
	Long: `Process one or more betting ticket images and extract the ticket
number, bet amount, currency, and date.

Supported formats: JPEG, PNG, BMP, TIFF, WebP

Examples:
  slipscan ticket photo.jpg
  slipscan ticket *.png --format json
  slipscan ticket photo.jpg --output result.json`,
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

		results := make(map[string]*pipeline.TicketResult, len(args))
		for _, path := range args {
			img, err := loadImageFile(path)
			if err != nil {
				return err
			}
			res, err := p.ExtractTicket(img)
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
			fmt.Fprintf(w, "  ticket_id: %s\n", orUnset(res.Record.TicketID))
			if res.Record.Amount != nil {
				fmt.Fprintf(w, "  amount:    %s\n", res.Record.Amount.String())
			} else {
				fmt.Fprintf(w, "  amount:    -\n")
			}
			fmt.Fprintf(w, "  currency:  %s\n", orUnset(res.Record.Currency))
			fmt.Fprintf(w, "  date:      %s\n", orUnset(res.Record.Date))
			fmt.Fprintf(w, "  confidence: %.1f\n", res.Confidence)
		}
		return nil
	},
}

// buildPipeline constructs an extraction pipeline from the effective
// configuration.
func buildPipeline(_ *cobra.Command) (*pipeline.Pipeline, error) {
	cfg := GetConfig()
	p, err := cfg.ToPipelineBuilder().Build()
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(ticketCmd)
	ticketCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	ticketCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
