package core

import "encoding/binary"

// AppDescriptorReservedSize is the trailing padding reserved for future
// fields; the layout must stay bit-exact so existing on-flash
// registries keep loading.
const AppDescriptorReservedSize = 256

// AppDescriptorSize is the fixed on-wire/in-memory size of an
// AppDescriptor: magic(2) + startOffset(4) + endOffset(4) +
// description(40) + parts(20*28) + partsCount(1) + tile(8256) +
// reserved(256).
const AppDescriptorSize = 2 + 4 + 4 + DescriptionSize + PartsMax*PartitionDescriptorSize + 1 + TileLength + AppDescriptorReservedSize

// AppDescriptor is one entry of the app registry: the flash byte range
// an installed app owns, its partition manifest, its description, and
// its preview tile.
type AppDescriptor struct {
	// Magic is AppMagic when the slot is occupied, MagicEmpty16 when free.
	Magic uint16

	// StartOffset/EndOffset are the inclusive flash byte range this app
	// owns. EndOffset is last-byte-inclusive; call sites that need an
	// exclusive bound go through End() rather than adding 1 inline.
	StartOffset uint32
	EndOffset   uint32

	Description [DescriptionSize]byte

	Parts      [PartsMax]PartitionDescriptor
	PartsCount uint8

	Tile [TileLength]byte
}

// Occupied reports whether this slot holds a live app.
func (a AppDescriptor) Occupied() bool { return a.Magic == AppMagic }

// End returns the exclusive upper bound of the app's flash region
// (EndOffset+1), the form most range comparisons want.
func (a AppDescriptor) End() uint32 { return a.EndOffset + 1 }

// DescriptionString returns Description as a Go string, truncated at the
// first NUL.
func (a AppDescriptor) DescriptionString() string {
	n := 0
	for n < len(a.Description) && a.Description[n] != 0 {
		n++
	}
	return string(a.Description[:n])
}

// SetDescription copies s into Description, NUL-padding or truncating to
// fit. The final byte is always zero so the field stays a valid
// NUL-terminated string on flash.
func (a *AppDescriptor) SetDescription(s string) {
	a.Description = [DescriptionSize]byte{}
	n := copy(a.Description[:], s)
	if n >= DescriptionSize {
		n = DescriptionSize - 1
	}
	a.Description[DescriptionSize-1] = 0
}

// MarshalBinary encodes a into its fixed-size wire form.
func (a AppDescriptor) MarshalBinary() []byte {
	buf := make([]byte, AppDescriptorSize)
	off := 0
	binary.LittleEndian.PutUint16(buf[off:], a.Magic)
	off += 2
	binary.LittleEndian.PutUint32(buf[off:], a.StartOffset)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], a.EndOffset)
	off += 4
	copy(buf[off:off+DescriptionSize], a.Description[:])
	off += DescriptionSize
	for i := 0; i < PartsMax; i++ {
		copy(buf[off:off+PartitionDescriptorSize], a.Parts[i].MarshalBinary())
		off += PartitionDescriptorSize
	}
	buf[off] = a.PartsCount
	off++
	copy(buf[off:off+TileLength], a.Tile[:])
	off += TileLength
	// remaining AppDescriptorReservedSize bytes stay zero
	return buf
}

// UnmarshalAppDescriptor decodes a fixed-size wire app descriptor. buf
// must be at least AppDescriptorSize bytes.
func UnmarshalAppDescriptor(buf []byte) AppDescriptor {
	var a AppDescriptor
	off := 0
	a.Magic = binary.LittleEndian.Uint16(buf[off:])
	off += 2
	a.StartOffset = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	a.EndOffset = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	copy(a.Description[:], buf[off:off+DescriptionSize])
	off += DescriptionSize
	for i := 0; i < PartsMax; i++ {
		a.Parts[i] = UnmarshalPartitionDescriptor(buf[off : off+PartitionDescriptorSize])
		off += PartitionDescriptorSize
	}
	a.PartsCount = buf[off]
	off++
	copy(a.Tile[:], buf[off:off+TileLength])
	off += TileLength
	return a
}
