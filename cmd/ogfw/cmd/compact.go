package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ducalex/odroid-go-firmware/internal/core"
	"github.com/ducalex/odroid-go-firmware/internal/progress"
)

// compactCmd exposes the compactor directly rather than through
// `delete`'s dispatch, for scripting and for property-testing against a
// real flash image.
var compactCmd = &cobra.Command{
	Use:   "compact <index>",
	Short: "Remove an app and shift the flash region above it down to close the gap",
	Args:  cobra.ExactArgs(1),
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

		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}
		if idx < 0 || idx >= registry.Count()-1 {
			return fmt.Errorf("index %d is the last app (or out of range); use 'ogfw delete %d' instead", idx, idx)
		}

		rep := progress.New(cmd.OutOrStdout())
		return core.Compact(registry, idx, rep.Func())
	},
}

func init() {
	RootCmd.AddCommand(compactCmd)
}
