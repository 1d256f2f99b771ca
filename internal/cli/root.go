// Package cli implements the partialweek command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dev-loop1/partial-week-converter/internal/config"
	apierrors "github.com/dev-loop1/partial-week-converter/internal/errors"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// Exit codes of Execute.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

// options are the persistent flags shared by every command.
type options struct {
	configFile string
	logLevel   string
	output     string
}

// Execute runs the CLI and returns the process exit code: 0 on success, 2 when the
// configuration cannot be loaded and 1 for any other failure.
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	rootCmd := newRootCmd(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if opts.output == outputJSON {
			errObj := map[string]any{"error": errorMessage(err)}
			var appErr *apierrors.AppError
			if errors.As(err, &appErr) {
				errObj["type"] = appErr.Type
			}
			var apiErr *apierrors.APIError
			if errors.As(err, &apiErr) {
				errObj["code"] = apiErr.ErrorCode
			}
			_ = printJSON(stdout, errObj)
		} else {
			fmt.Fprintf(stderr, "Error: %s\n", errorMessage(err))
		}
		if apierrors.IsType(err, apierrors.ErrTypeConfig) {
			return exitConfig
		}
		return exitFailed
	}
	return exitOK
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "partialweek",
		Short:         "Split weekly data into partial weeks at month boundaries",
		Long:          "Converts weekly workbooks so that weeks crossing a calendar month become two partial-week rows.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != outputText && opts.output != outputJSON {
				return fmt.Errorf("invalid output format %q (want %s or %s)", opts.output, outputText, outputJSON)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default: config.yaml, configs/config.yaml or $"+config.ConfigFileEnv+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format (text, json)")

	rootCmd.AddCommand(newConvertCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newVersionCmd(opts))

	return rootCmd
}

// loadConfig loads the configuration and applies flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apierrors.NewConfigError("invalid configuration", err)
	}

	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
	}
	return cfg, nil
}

// errorMessage drops the error-type prefixes so the message reads like the underlying failure.
func errorMessage(err error) string {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Message + ": " + errorMessage(appErr.Cause)
	}
	return err.Error()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
