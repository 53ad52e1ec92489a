package flash

import (
	"bytes"
	"fmt"
	"os"
)

// MemDevice is an in-memory Device, used by unit tests and by the
// property-test harness in internal/core. A freshly erased byte reads as
// 0xFF, matching real SPI-NOR chip behavior.
type MemDevice struct {
	buf []byte
}

// NewMemDevice returns a size-byte device, entirely erased (0xFF-filled).
func NewMemDevice(size int64) *MemDevice {
	d := &MemDevice{buf: make([]byte, size)}
	for i := range d.buf {
		d.buf[i] = 0xff
	}
	return d
}

func (d *MemDevice) Size() int64 { return int64(len(d.buf)) }

func (d *MemDevice) bounds(off, length int64, op string) error {
	if off < 0 || length < 0 || off+length > int64(len(d.buf)) {
		return &IOError{Op: op, Off: off, Len: length, Err: fmt.Errorf("out of range (size=%#x)", len(d.buf))}
	}
	return nil
}

func (d *MemDevice) ReadAt(p []byte, off int64) error {
	if err := d.bounds(off, int64(len(p)), "read"); err != nil {
		return err
	}
	copy(p, d.buf[off:off+int64(len(p))])
	return nil
}

func (d *MemDevice) EraseAt(off, length int64) error {
	if !AlignedErase(off, length) {
		return &IOError{Op: "erase", Off: off, Len: length, Err: fmt.Errorf("not %d-aligned", BlockSize)}
	}
	if err := d.bounds(off, length, "erase"); err != nil {
		return err
	}
	for i := off; i < off+length; i++ {
		d.buf[i] = 0xff
	}
	return nil
}

func (d *MemDevice) WriteAt(p []byte, off int64) error {
	if err := d.bounds(off, int64(len(p)), "write"); err != nil {
		return err
	}
	copy(d.buf[off:off+int64(len(p))], p)
	return nil
}

// Snapshot returns a defensive copy of the full device contents, for test
// assertions.
func (d *MemDevice) Snapshot() []byte {
	return bytes.Clone(d.buf)
}

// FileDevice is a Device backed by a regular file, used when the CLI
// operates against a flash-image file on disk rather than a real
// SPI-NOR chip.
type FileDevice struct {
	f    *os.File
	size int64
}

// OpenFileDevice opens an existing flash-image file of the given size.
func OpenFileDevice(path string, size int64) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileDevice{f: f, size: size}, nil
}

// CreateFileDevice creates a new size-byte flash-image file, entirely
// erased (0xFF-filled).
func CreateFileDevice(path string, size int64) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	d := &FileDevice{f: f, size: size}
	blank := bytes.Repeat([]byte{0xff}, BlockSize)
	for off := int64(0); off < size; off += BlockSize {
		n := int64(BlockSize)
		if off+n > size {
			n = size - off
		}
		if _, err := f.WriteAt(blank[:n], off); err != nil {
			f.Close()
			os.Remove(path)
			return nil, err
		}
	}
	return d, nil
}

func (d *FileDevice) Size() int64 { return d.size }

func (d *FileDevice) Close() error { return d.f.Close() }

func (d *FileDevice) bounds(off, length int64) error {
	if off < 0 || length < 0 || off+length > d.size {
		return fmt.Errorf("out of range (size=%#x)", d.size)
	}
	return nil
}

func (d *FileDevice) ReadAt(p []byte, off int64) error {
	if err := d.bounds(off, int64(len(p))); err != nil {
		return &IOError{Op: "read", Off: off, Len: int64(len(p)), Err: err}
	}
	if _, err := d.f.ReadAt(p, off); err != nil {
		return &IOError{Op: "read", Off: off, Len: int64(len(p)), Err: err}
	}
	return nil
}

func (d *FileDevice) EraseAt(off, length int64) error {
	if !AlignedErase(off, length) {
		return &IOError{Op: "erase", Off: off, Len: length, Err: fmt.Errorf("not %d-aligned", BlockSize)}
	}
	if err := d.bounds(off, length); err != nil {
		return &IOError{Op: "erase", Off: off, Len: length, Err: err}
	}
	blank := bytes.Repeat([]byte{0xff}, BlockSize)
	for cur := off; cur < off+length; cur += BlockSize {
		if _, err := d.f.WriteAt(blank, cur); err != nil {
			return &IOError{Op: "erase", Off: cur, Len: BlockSize, Err: err}
		}
	}
	return nil
}

func (d *FileDevice) WriteAt(p []byte, off int64) error {
	if err := d.bounds(off, int64(len(p))); err != nil {
		return &IOError{Op: "write", Off: off, Len: int64(len(p)), Err: err}
	}
	if _, err := d.f.WriteAt(p, off); err != nil {
		return &IOError{Op: "write", Off: off, Len: int64(len(p)), Err: err}
	}
	return nil
}

// Sync flushes the file device to stable storage.
func (d *FileDevice) Sync() error {
	return d.f.Sync()
}
