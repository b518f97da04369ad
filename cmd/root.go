package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "panotour",
	Short: "360° virtual tour sessions with an assistant guide",
	Long: `Panotour loads virtual tours (scene graphs of 360° panoramas), drives a
panorama viewer through them and keeps an assistant guide talking about
where you are. Walk a tour in the terminal, or host sessions for browser
viewers over WebSocket.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".panotour.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
