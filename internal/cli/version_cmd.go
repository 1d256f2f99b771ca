package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dev-loop1/partial-week-converter/pkg/contracts"
)

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := contracts.GetVersionInfo()
			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
			return err
		},
	}
}
