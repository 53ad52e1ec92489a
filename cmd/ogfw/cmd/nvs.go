package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ducalex/odroid-go-firmware/internal/core"
)

// eraseNVSCmd is ogfw erase-nvs, the "Erase NVM" maintenance action:
// wipe the platform's non-volatile settings storage without touching
// the partition table or the app registry.
var eraseNVSCmd = &cobra.Command{
	Use:   "erase-nvs",
	Short: "Erase the platform's non-volatile settings storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return core.EraseNVS(fileNVSEraser{})
	},
}

func init() {
	RootCmd.AddCommand(eraseNVSCmd)
}
