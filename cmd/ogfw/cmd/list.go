package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listVerify bool

// listCmd is ogfw list: one line per installed app, index through part
// count, plus the registry's allocation state.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openImage()
		if err != nil {
			return err
		}
		defer dev.Close()

		_, registry, err := loadTableAndRegistry(dev)
		if err != nil {
			return err
		}

		for i, app := range registry.Apps() {
			size := uint64(app.EndOffset-app.StartOffset) + 1
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  0x%06x-0x%06x  %8s  %-20s  %d parts\n",
				i, app.StartOffset, app.EndOffset, humanize.Bytes(size),
				app.DescriptionString(), app.PartsCount)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "allocation frontier: 0x%06x (%d/%d slots used)\n",
			registry.AllocationFrontier(), registry.Count(), registry.Capacity())

		if listVerify {
			hash, err := registry.RegistryHash()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry hash: %s\n", hash)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listVerify, "verify", false, "print a diagnostic content hash of the registry")
	RootCmd.AddCommand(listCmd)
}
