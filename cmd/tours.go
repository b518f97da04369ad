package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var toursCmd = &cobra.Command{
	Use:   "tours [dir]",
	Short: "List the tours in a tours directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := fileRepositoryFromArgs(args)
		if err != nil {
			return err
		}
		ids, err := repo.List()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tSCENES\tSTART")
		for _, id := range ids {
			t, err := repo.Load(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(tw, "%s\t(invalid)\t-\t-\n", id)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", id, t.Title, len(t.Scenes), t.StartScene)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(toursCmd)
}
