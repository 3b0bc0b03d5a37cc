package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

// toolsCmd represents the tools command
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List validation types and the endpoints they post to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTools(cmd.OutOrStdout(), validator.NewClient(GetConfig()))
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func printTools(out io.Writer, client *validator.Client) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tLABEL\tFILES\tREPORT\tENDPOINT")
	fmt.Fprintln(w, "----\t-----\t-----\t------\t--------")

	for _, info := range validator.Tools() {
		endpoint, err := client.Endpoint(info.ID)
		if err != nil {
			return err
		}

		slots := make([]string, 0, len(info.Slots))
		for _, slot := range info.Slots {
			slots = append(slots, string(slot))
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.ID, info.Label, strings.Join(slots, ", "), info.DefaultFilename, endpoint)
	}

	return w.Flush()
}
