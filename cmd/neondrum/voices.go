package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

func init() {
	rootCmd.AddCommand(voicesCmd)
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the drum voices and their grid cells",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cell  position      voice")
		positions := []string{
			"top-left", "top-center", "top-right",
			"mid-left", "center", "mid-right",
			"bottom-left", "bottom-center", "bottom-right",
		}
		for cell, voice := range synth.CellVoices {
			fmt.Printf("%4d  %-12s  %s\n", cell, positions[cell], voice)
		}
	},
}
