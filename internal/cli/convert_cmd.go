package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dev-loop1/partial-week-converter/internal/files"
	"github.com/dev-loop1/partial-week-converter/internal/infrastructure"
	"github.com/dev-loop1/partial-week-converter/internal/services"
	api "github.com/dev-loop1/partial-week-converter/pkg/contracts/api/v1"
)

type convertSummary struct {
	api.DisaggregateSummary
	Input  string `json:"input"`
	Output string `json:"output"`
}

// batchItem reports one file of a directory conversion.
type batchItem struct {
	*convertSummary
	Input string `json:"input"`
	Error string `json:"error,omitempty"`
}

type converter struct {
	svc *services.ConversionService
	req api.DisaggregateRequest

	// written maps each output path of a directory run to the input that produced it.
	written map[string]string
}

// convertFile converts in and writes the result to out. An empty out writes the
// generated output name into outDir.
func (c *converter) convertFile(ctx context.Context, in, out, outDir string) (*convertSummary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	result, err := c.svc.ConvertFile(ctx, c.req, in)
	if err != nil {
		return nil, err
	}

	if out == "" {
		out = filepath.Join(outDir, result.Filename)
	}
	if c.written != nil {
		if prev, ok := c.written[out]; ok {
			return nil, fmt.Errorf("output %s was already written from %s", out, prev)
		}
		c.written[out] = in
	}
	if err := c.svc.WriteResult(result, out); err != nil {
		return nil, err
	}
	return &convertSummary{DisaggregateSummary: result.Summary(), Input: in, Output: out}, nil
}

// convertDir converts every input file in dir into outDir (default: dir).
// Failures are reported per file and do not stop the batch. An input whose output
// name was already produced by an earlier input fails instead of overwriting it.
func (c *converter) convertDir(cmd *cobra.Command, opts *options, dir, outDir string) error {
	inputs, err := files.NewDiscovery("").FindInputs(dir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .xlsx or .csv files found in %s", dir)
	}
	if outDir == "" {
		outDir = dir
	}

	c.written = make(map[string]string, len(inputs))
	items := make([]batchItem, 0, len(inputs))
	failed := 0
	for _, input := range inputs {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		summary, err := c.convertFile(cmd.Context(), input.Path, "", outDir)
		item := batchItem{convertSummary: summary, Input: input.Path}
		if err != nil {
			failed++
			item.Error = errorMessage(err)
		}
		items = append(items, item)

		if opts.output == outputJSON {
			continue
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed %s: %s\n", input.Name, item.Error)
			continue
		}
		if err := printSummary(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	}

	if opts.output == outputJSON {
		if err := printJSON(cmd.OutOrStdout(), items); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to convert", failed, len(inputs))
	}
	return nil
}

func printSummary(w io.Writer, summary *convertSummary) error {
	_, err := fmt.Fprintf(w, "Wrote %s (%d rows in, %d rows out, %d weeks split)\n",
		summary.Output, summary.Stats.InputRows, summary.Stats.OutputRows, summary.Stats.SplitRows)
	return err
}

func newConvertCmd(opts *options) *cobra.Command {
	var (
		in          string
		out         string
		dateColumn  string
		valueColumn string
		format      string
		sheet       string
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a weekly workbook or CSV file",
		Long: "Reads a weekly .xlsx (or .csv) file, splits weeks that cross a month boundary and writes\n" +
			"<name>_partial_week_output.<ext> next to the input unless --out is given.\n" +
			"When --in is a directory every workbook and CSV file in it is converted and --out names the output directory.",
		Example: `  partialweek convert --in weekly.xlsx --date-column "Week Start" --value-column Amount
  partialweek convert --in weekly.csv --date-column Date --value-column Sales --format csv --out out.csv
  partialweek convert --in ./exports --out ./converted --date-column Date --value-column Sales`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Processing.Workers = workers
			}
			if dateColumn == "" {
				dateColumn = cfg.Processing.DateColumn
			}
			if valueColumn == "" {
				valueColumn = cfg.Processing.ValueColumn
			}

			logger := infrastructure.NewLogger(cmd.ErrOrStderr(), cfg.Logging)
			c := &converter{
				svc: services.NewConversionService(cfg.Processing, nil, nil, logger),
				req: api.DisaggregateRequest{
					DateColumn:  dateColumn,
					ValueColumn: valueColumn,
					Format:      format,
					Sheet:       sheet,
				},
			}

			if info, err := os.Stat(in); err == nil && info.IsDir() {
				return c.convertDir(cmd, opts, in, out)
			}

			summary, err := c.convertFile(cmd.Context(), in, out, filepath.Dir(in))
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Input .xlsx or .csv file, or a directory of them")
	cmd.Flags().StringVar(&out, "out", "", "Output file, or output directory for a directory input (default: next to the input)")
	cmd.Flags().StringVar(&dateColumn, "date-column", "", "Name of the week start date column")
	cmd.Flags().StringVar(&valueColumn, "value-column", "", "Name of the value column to apportion")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: xlsx or csv (default from config)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers (default from config)")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}
