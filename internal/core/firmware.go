package core

import (
	"encoding/binary"
	"io"
)

// FirmwareReader is a streaming reader over the .fw container format: a
// fixed magic header, a fixed description, a fixed tile, zero or more
// part records, and a trailing CRC-32.
//
// Next() mirrors archive/tar.Reader's Next()-then-io.Reader idiom:
// advancing to the next part discards any unread remainder of the
// current one.
type FirmwareReader struct {
	r    io.ReadSeeker
	size int64

	description [DescriptionSize]byte

	cur *io.LimitedReader // current part's payload; cur.N is its unread remainder
}

// OpenFirmwareReader wraps r, which must support Seek (typically an
// *os.File opened on an SD card). size is the total file size.
func OpenFirmwareReader(r io.ReadSeeker, size int64) *FirmwareReader {
	return &FirmwareReader{r: r, size: size}
}

// TotalSize returns the file's total size in bytes, including the
// trailing CRC-32.
func (f *FirmwareReader) TotalSize() int64 { return f.size }

// ReadHeader verifies the magic header and reads the fixed-size
// description, leaving the cursor positioned at the start of the tile.
func (f *FirmwareReader) ReadHeader() (string, error) {
	if _, err := f.r.Seek(0, io.SeekStart); err != nil {
		return "", fileIOErr("HEADER SEEK", err)
	}
	magic := make([]byte, len(FirmwareMagic))
	if _, err := io.ReadFull(f.r, magic); err != nil {
		return "", fileIOErr("HEADER READ", err)
	}
	if string(magic) != FirmwareMagic {
		return "", formatErr("HEADER MATCH", errBadMagic)
	}
	if _, err := io.ReadFull(f.r, f.description[:]); err != nil {
		return "", fileIOErr("DESCRIPTION READ", err)
	}
	f.description[DescriptionSize-1] = 0
	return f.DescriptionString(), nil
}

// DescriptionString returns the description read by ReadHeader.
func (f *FirmwareReader) DescriptionString() string {
	n := 0
	for n < len(f.description) && f.description[n] != 0 {
		n++
	}
	return string(f.description[:n])
}

// ReadTile reads the TILE_LENGTH-byte thumbnail that follows the
// description, leaving the cursor at the first part record.
func (f *FirmwareReader) ReadTile() ([]byte, error) {
	tile := make([]byte, TileLength)
	if _, err := io.ReadFull(f.r, tile); err != nil {
		return nil, fileIOErr("TILE READ", err)
	}
	return tile, nil
}

// PeekTile probes a firmware file for just its preview image: it reads
// the header+description+tile sequence from the start and returns a
// zero-filled tile on any mismatch instead of an error, so a UI
// listing firmware files never halts on one bad preview.
func PeekTile(r io.ReadSeeker) []byte {
	fr := OpenFirmwareReader(r, 0)
	if _, err := fr.ReadHeader(); err != nil {
		return make([]byte, TileLength)
	}
	tile, err := fr.ReadTile()
	if err != nil {
		return make([]byte, TileLength)
	}
	return tile
}

// PartHeader is the parsed (descriptor, length) pair preceding one part's
// payload.
type PartHeader struct {
	Descriptor PartitionDescriptor
	Length     uint32
}

// Next reads the next part's descriptor and length header and returns a
// reader limited to exactly Length bytes of payload. The iteration ends
// (ok=false, err=nil) once the file cursor reaches TotalSize-4, the
// start of the trailing CRC.
func (f *FirmwareReader) Next() (hdr PartHeader, payload io.Reader, ok bool, err error) {
	if f.cur != nil && f.cur.N > 0 {
		// Discard any unread remainder of the previous part, the way
		// archive/tar.Reader.Next does.
		if _, serr := f.r.Seek(f.cur.N, io.SeekCurrent); serr != nil {
			return PartHeader{}, nil, false, fileIOErr("SEEK", serr)
		}
	}
	f.cur = nil

	pos, err := f.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return PartHeader{}, nil, false, fileIOErr("TELL", err)
	}
	if pos >= f.size-4 {
		return PartHeader{}, nil, false, nil
	}

	descBuf := make([]byte, PartitionDescriptorSize)
	if _, err := io.ReadFull(f.r, descBuf); err != nil {
		return PartHeader{}, nil, false, fileIOErr("PARTITION READ", err)
	}
	desc := UnmarshalPartitionDescriptor(descBuf)

	var lenBuf [4]byte
	if _, err := io.ReadFull(f.r, lenBuf[:]); err != nil {
		return PartHeader{}, nil, false, fileIOErr("LENGTH READ", err)
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])

	f.cur = &io.LimitedReader{R: f.r, N: int64(length)}
	hdr = PartHeader{Descriptor: desc, Length: length}
	return hdr, f.cur, true, nil
}

// SeekCRC seeks to and reads the trailing little-endian CRC-32.
func (f *FirmwareReader) SeekCRC() (uint32, error) {
	if _, err := f.r.Seek(f.size-4, io.SeekStart); err != nil {
		return 0, fileIOErr("CHECKSUM SEEK", err)
	}
	var buf [4]byte
	if _, err := io.ReadFull(f.r, buf[:]); err != nil {
		return 0, fileIOErr("CHECKSUM READ", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
