// Binary ogfw installs and manages odroid-go firmware applications on a
// 16 MiB SPI-NOR flash image: parsing .fw firmware files, writing their
// partitions into flash, maintaining the app registry, and selecting
// which installed app boots next.
package main

import "github.com/ducalex/odroid-go-firmware/cmd/ogfw/cmd"

func main() {
	cmd.Execute()
}
