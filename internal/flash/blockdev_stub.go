//go:build !linux

package flash

import "fmt"

func deviceSize(fd uintptr) (int64, error) {
	return 0, fmt.Errorf("flash: getting block device sizes is not implemented on this platform")
}

func reloadPartitionTable(fd uintptr) error {
	return fmt.Errorf("flash: reloading the live partition table is not implemented on this platform; a reboot is required")
}
