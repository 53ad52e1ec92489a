package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ducalex/odroid-go-firmware/internal/core"
	"github.com/ducalex/odroid-go-firmware/internal/flash"
)

var initCapacity int

// initCmd creates a fresh, blank flash-image file and lays out the one
// partition-table entry (FACTORY_DATA) every later operation needs to
// find the app registry. A real device ships with
// this already provisioned by the factory; this exists so ogfw has a
// device to operate against without one.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a blank flash image with an empty app registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if initCapacity <= 0 {
			return fmt.Errorf("--capacity must be positive")
		}

		dev, err := flash.CreateFileDevice(imagePath, core.FlashSize)
		if err != nil {
			return fmt.Errorf("create flash image: %w", err)
		}
		defer dev.Close()

		factoryDataOffset := core.PartitionTableOffset + flash.BlockSize
		factoryDataSize := flash.CeilBlocks(int64(initCapacity) * core.AppDescriptorSize)

		if err := core.InitTable(dev, uint32(factoryDataOffset), uint32(factoryDataSize)); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s: factory_data at 0x%06x, capacity %d apps\n",
			imagePath, factoryDataOffset, initCapacity)
		return nil
	},
}

func init() {
	initCmd.Flags().IntVar(&initCapacity, "capacity", 8, "number of app-registry slots to provision")
	RootCmd.AddCommand(initCmd)
}
