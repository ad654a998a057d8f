package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Cyriloo7/Interviewer/internal/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop resume extraction application",
	Run: func(_ *cobra.Command, _ []string) {
		logger := newLogger()
		defer logger.Sync()

		gui.NewApp(logger).Run()
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
