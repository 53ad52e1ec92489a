package cmd

import (
	"fmt"

	"github.com/ducalex/odroid-go-firmware/internal/core"
	"github.com/ducalex/odroid-go-firmware/internal/flash"
)

// openImage opens the --image flash-image file. It must already exist
// and be exactly core.FlashSize bytes; use `ogfw init` or any tool that
// lays out the bootloader, partition table and factory-data partition
// first.
func openImage() (*flash.FileDevice, error) {
	if imagePath == "" {
		return nil, fmt.Errorf("--image is required")
	}
	return flash.OpenFileDevice(imagePath, core.FlashSize)
}

// loadTableAndRegistry reads the live partition table from dev and the
// app registry from its FACTORY_DATA partition.
func loadTableAndRegistry(dev flash.Device) (*core.PartitionTableManager, *core.AppRegistry, error) {
	table := core.NewPartitionTableManager(dev)
	if err := table.Load(); err != nil {
		return nil, nil, err
	}
	factoryData, ok := table.FactoryData()
	if !ok {
		return nil, nil, fmt.Errorf("ogfw: partition table has no FACTORY_DATA entry")
	}
	registry, err := core.LoadAppRegistry(dev, factoryData)
	if err != nil {
		return nil, nil, err
	}
	return table, registry, nil
}
