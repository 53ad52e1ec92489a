//go:build linux

package flash

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// deviceSize returns the size in bytes of the block device backing fd.
func deviceSize(fd uintptr) (int64, error) {
	var devsize uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&devsize))); errno != 0 {
		return 0, errno
	}
	return int64(devsize), nil
}

// reloadPartitionTable asks the kernel to re-read the partition table
// of the block device backing fd. On SPI-NOR/ESP-IDF targets the
// analogous hook is esp_partition_reload_table(); on a Linux block
// device it is the BLKRRPART ioctl, same sequence as fdisk(8).
func reloadPartitionTable(fd uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, unix.BLKRRPART, 0); errno != 0 {
		return errno
	}
	return nil
}
