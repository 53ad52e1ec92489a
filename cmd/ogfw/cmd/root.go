package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

// imagePath is the shared --image flag every subcommand needs: the path
// to a flash-image file standing in for the device's raw SPI-NOR chip
// (internal/flash.FileDevice).
var imagePath string

var RootCmd = &cobra.Command{
	Use:           "ogfw",
	Short:         "install and manage odroid-go firmware applications on a flash image",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&imagePath, "image", "", "path to a 16 MiB flash image file (required)")
	RootCmd.MarkPersistentFlagRequired("image")
}

// Execute runs the CLI.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
