package flash

import "fmt"

// Partition is an offset-translated, extent-clamped view over a Device,
// standing in for the SoC's esp_partition_read/write/erase family: every
// call is relative to Base and bounds-checked against Size.
type Partition struct {
	Device Device
	Base   int64
	Size   int64
}

func (p *Partition) clamp(off, length int64, op string) error {
	if off < 0 || length < 0 || off+length > p.Size {
		return fmt.Errorf("flash: partition %s out of range: off=%#x len=%#x size=%#x", op, off, length, p.Size)
	}
	return nil
}

// ReadAt reads len(p) bytes at partition-relative offset off.
func (pt *Partition) ReadAt(p []byte, off int64) error {
	if err := pt.clamp(off, int64(len(p)), "read"); err != nil {
		return err
	}
	return pt.Device.ReadAt(p, pt.Base+off)
}

// EraseAt erases length bytes at partition-relative offset off.
func (pt *Partition) EraseAt(off, length int64) error {
	if err := pt.clamp(off, length, "erase"); err != nil {
		return err
	}
	return pt.Device.EraseAt(pt.Base+off, length)
}

// WriteAt writes p at partition-relative offset off.
func (pt *Partition) WriteAt(p []byte, off int64) error {
	if err := pt.clamp(off, int64(len(p)), "write"); err != nil {
		return err
	}
	return pt.Device.WriteAt(p, pt.Base+off)
}

// EraseAll erases the partition's entire extent in one call. Size must
// already be BlockSize-aligned (true for the factory-data partition, the
// only partition erased this way).
func (pt *Partition) EraseAll() error {
	return pt.EraseAt(0, pt.Size)
}
