package core

import (
	"testing"

	"github.com/ducalex/odroid-go-firmware/internal/flash"
)

// newTestDevice provisions an in-memory device the same way InitTable
// lays out a real one: one partition table entry for FACTORY_DATA sized
// to hold capacity app descriptors, immediately after the table sector.
func newTestDevice(t *testing.T, capacity int) (*flash.MemDevice, *PartitionTableManager, *AppRegistry) {
	t.Helper()

	dev := flash.NewMemDevice(FlashSize)
	factoryDataOffset := uint32(PartitionTableOffset + flash.BlockSize)
	factoryDataSize := uint32(flash.CeilBlocks(int64(capacity) * AppDescriptorSize))

	if err := InitTable(dev, factoryDataOffset, factoryDataSize); err != nil {
		t.Fatalf("InitTable: %v", err)
	}

	table := NewPartitionTableManager(dev)
	if err := table.Load(); err != nil {
		t.Fatalf("table.Load: %v", err)
	}
	factoryData, ok := table.FactoryData()
	if !ok {
		t.Fatalf("no FACTORY_DATA entry after InitTable")
	}

	registry, err := LoadAppRegistry(dev, factoryData)
	if err != nil {
		t.Fatalf("LoadAppRegistry: %v", err)
	}
	return dev, table, registry
}

// reloadRegistry re-reads the registry off dev, to assert persisted
// state rather than in-memory state.
func reloadRegistry(t *testing.T, dev flash.Device, table *PartitionTableManager) *AppRegistry {
	t.Helper()
	factoryData, ok := table.FactoryData()
	if !ok {
		t.Fatalf("no FACTORY_DATA entry")
	}
	registry, err := LoadAppRegistry(dev, factoryData)
	if err != nil {
		t.Fatalf("LoadAppRegistry: %v", err)
	}
	return registry
}

// testApp builds an AppDescriptor occupying [start, start+size) with the
// given description and a single synthetic part, for registry/compactor
// tests that don't need a real firmware file.
func testApp(start, size uint32, description string) AppDescriptor {
	var app AppDescriptor
	app.StartOffset = start
	app.EndOffset = start + size - 1
	app.SetDescription(description)
	var part PartitionDescriptor
	part.Type = PartTypeApp
	part.Subtype = PartSubtypeAppOTA0
	part.SetLabel("app")
	part.Length = size
	app.Parts[0] = part
	app.PartsCount = 1
	return app
}
