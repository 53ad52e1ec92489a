package cmd

import (
	"fmt"

	"github.com/ducalex/odroid-go-firmware/internal/core"
)

// fileOTASetter is a diagnostic stand-in for the platform's
// ota_set_boot(partition_handle) hook. ogfw operates against a
// flash-image file rather than a real SPI-NOR chip wired to a booting
// SoC, so there is no boot ROM to notify; it just reports what would
// have been marked bootable. A device-resident build substitutes a real
// implementation here.
type fileOTASetter struct{}

func (fileOTASetter) SetBootPartition(entry core.TableEntry) error {
	fmt.Printf("ota_set_boot: type=%#02x subtype=%#02x offset=%#x size=%#x label=%q\n",
		entry.Type, entry.Subtype, entry.Offset, entry.Size, entry.LabelString())
	return nil
}

// fileNVSEraser is the matching stand-in for the platform's
// nvs_flash_erase hook. A flash-image file defines no NVS region, so
// there is nothing to wipe; it reports that and succeeds.
type fileNVSEraser struct{}

func (fileNVSEraser) EraseNVS() error {
	fmt.Println("nvs_erase: no NVS storage on a flash-image file, nothing to wipe")
	return nil
}
