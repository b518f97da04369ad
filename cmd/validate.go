package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/panotour/internal/progress"
	"github.com/ziadkadry99/panotour/internal/tour"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check tour descriptor files for broken scene graphs",
	Long: `Loads every tour file below dir (default: tours_dir from the config, or
data/tours) and reports missing start scenes and hotspots that point at
scenes which do not exist.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := fileRepositoryFromArgs(args)
		if err != nil {
			return err
		}

		ids, err := repo.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No tour files found in %s\n", repo.Dir())
			return nil
		}

		out := cmd.OutOrStdout()
		reporter := progress.NewReporter(cmd.ErrOrStderr())
		reporter.Begin(len(ids))
		failures := make(map[string]error)
		for _, id := range ids {
			_, err := repo.Load(cmd.Context(), id)
			if err != nil {
				failures[id] = err
			}
			reporter.Checked(id, err)
		}
		tally := reporter.Done()

		for _, id := range ids {
			if err, ok := failures[id]; ok {
				fmt.Fprintf(out, "FAIL %s\n  %v\n", id, err)
			}
		}
		fmt.Fprintf(out, "%d tours checked, %d invalid\n", tally.Checked, tally.Invalid)
		if tally.Invalid > 0 {
			return fmt.Errorf("%d invalid tours", tally.Invalid)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// fileRepositoryFromArgs returns a file repository for the directory given
// on the command line, the configured tours_dir, or data/tours.
func fileRepositoryFromArgs(args []string) (*tour.FileRepository, error) {
	if len(args) == 1 {
		return tour.NewFileRepository(args[0]), nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.ToursDir != "" {
		return tour.NewFileRepository(cfg.ToursDir), nil
	}
	return tour.NewFileRepository("data/tours"), nil
}
