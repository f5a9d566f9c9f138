package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "neondrum",
	Short: "Webcam-driven drum kit",
	Long: `Neon Drum turns a webcam into a nine-pad drum kit: wave a hand over
a grid cell and the matching drum voice plays. All sound is synthesized,
no samples involved.`,
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
