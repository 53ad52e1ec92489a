package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tableCmd is ogfw table: dump the live partition table the Partition
// Table Manager currently holds, split into the fixed prefix (boot
// loader through FACTORY_DATA) and the mutable region an app's parts
// occupy.
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the live partition table",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openImage()
		if err != nil {
			return err
		}
		defer dev.Close()

		table, _, err := loadTableAndRegistry(dev)
		if err != nil {
			return err
		}

		for i, e := range table.Entries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  type=%#02x subtype=%#02x  0x%06x-0x%06x  %q\n",
				i, e.Type, e.Subtype, e.Offset, e.Offset+e.Size-1, e.LabelString())
		}
		for i, e := range table.MutableEntries() {
			fmt.Fprintf(cmd.OutOrStdout(), "app%-2d type=%#02x subtype=%#02x  0x%06x-0x%06x  %q\n",
				i, e.Type, e.Subtype, e.Offset, e.Offset+e.Size-1, e.LabelString())
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tableCmd)
}
