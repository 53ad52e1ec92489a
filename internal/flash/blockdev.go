package flash

import (
	"bytes"
	"os"

	"golang.org/x/sys/unix"
)

// BlockDevice is a Device backed by a real Linux block device node (e.g.
// /dev/mtdblockN exposing the SPI-NOR chip, or a loopback device used in
// development). It supports the "reload partition table" platform hook
// the partition table manager invokes when available.
type BlockDevice struct {
	f    *os.File
	size int64
}

// OpenBlockDevice opens path and queries its size via ioctl.
func OpenBlockDevice(path string) (*BlockDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	size, err := deviceSize(f.Fd())
	if err != nil {
		f.Close()
		return nil, err
	}
	return &BlockDevice{f: f, size: size}, nil
}

func (d *BlockDevice) Size() int64  { return d.size }
func (d *BlockDevice) Close() error { return d.f.Close() }

func (d *BlockDevice) ReadAt(p []byte, off int64) error {
	if _, err := d.f.ReadAt(p, off); err != nil {
		return &IOError{Op: "read", Off: off, Len: int64(len(p)), Err: err}
	}
	return nil
}

func (d *BlockDevice) EraseAt(off, length int64) error {
	if !AlignedErase(off, length) {
		return &IOError{Op: "erase", Off: off, Len: length, Err: errNotAligned}
	}
	blank := bytes.Repeat([]byte{0xff}, BlockSize)
	for cur := off; cur < off+length; cur += BlockSize {
		if _, err := d.f.WriteAt(blank, cur); err != nil {
			return &IOError{Op: "erase", Off: cur, Len: BlockSize, Err: err}
		}
	}
	return nil
}

func (d *BlockDevice) WriteAt(p []byte, off int64) error {
	if _, err := d.f.WriteAt(p, off); err != nil {
		return &IOError{Op: "write", Off: off, Len: int64(len(p)), Err: err}
	}
	return nil
}

// ReloadPartitionTable makes the kernel re-read the device's partition
// table without a reboot. When it is unavailable (non-Linux targets,
// real SPI-NOR ESP-IDF devices without esp_partition_reload_table
// patched in) callers must fall back to the RTC no-init two-phase
// commit in internal/core/bootflag.
func (d *BlockDevice) ReloadPartitionTable() error {
	unix.Sync()
	err := reloadPartitionTable(d.f.Fd())
	if serr := d.f.Sync(); serr != nil && err == nil {
		err = serr
	}
	unix.Sync()
	return err
}

var errNotAligned = &alignError{}

type alignError struct{}

func (*alignError) Error() string { return "offset/length not block-aligned" }
