package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ducalex/odroid-go-firmware/internal/progress"
)

var deleteAll bool

// deleteCmd is ogfw delete, covering both single-app removal (which
// dispatches to the compactor for interior indices) and "erase all apps".
var deleteCmd = &cobra.Command{
	Use:   "delete [index]",
	Short: "Delete an installed application, or every app with --all",
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

		if deleteAll {
			if len(args) != 0 {
				return fmt.Errorf("--all takes no index argument")
			}
			return registry.Clear()
		}

		if len(args) != 1 {
			return fmt.Errorf("expected exactly one app index, or --all")
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}

		rep := progress.New(cmd.OutOrStdout())
		return registry.Remove(idx, rep.Func())
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "erase every installed app")
	RootCmd.AddCommand(deleteCmd)
}
