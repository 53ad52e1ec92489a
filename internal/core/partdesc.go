package core

import "encoding/binary"

// PartitionDescriptorSize is the fixed on-wire size of a PartitionDescriptor.
const PartitionDescriptorSize = 1 + 1 + 2 + 16 + 4 + 4 // 28

// PartitionDescriptor is the 28-byte on-wire partition descriptor that
// precedes every part record in a firmware file.
type PartitionDescriptor struct {
	Type    uint8
	Subtype uint8
	// Reserved must be zero on the wire.
	Label  [16]byte
	Flags  uint32
	Length uint32
}

// LabelString returns Label as a Go string, truncated at the first NUL.
func (d PartitionDescriptor) LabelString() string {
	n := 0
	for n < len(d.Label) && d.Label[n] != 0 {
		n++
	}
	return string(d.Label[:n])
}

// SetLabel copies s into Label, NUL-padding or truncating to fit.
func (d *PartitionDescriptor) SetLabel(s string) {
	d.Label = [16]byte{}
	copy(d.Label[:], s)
}

// Valid reports whether Type is not the sentinel invalid value (0xff).
func (d PartitionDescriptor) Valid() bool {
	return d.Type != PartTypeInvalid
}

// AlignedLength reports whether Length is a multiple of AlignSize, as
// required of every on-wire partition descriptor.
func (d PartitionDescriptor) AlignedLength() bool {
	return d.Length%AlignSize == 0
}

// MarshalBinary encodes d into its 28-byte wire form.
func (d PartitionDescriptor) MarshalBinary() []byte {
	buf := make([]byte, PartitionDescriptorSize)
	buf[0] = d.Type
	buf[1] = d.Subtype
	// buf[2:4] reserved, left zero
	copy(buf[4:20], d.Label[:])
	binary.LittleEndian.PutUint32(buf[20:24], d.Flags)
	binary.LittleEndian.PutUint32(buf[24:28], d.Length)
	return buf
}

// UnmarshalPartitionDescriptor decodes a 28-byte wire partition
// descriptor.
func UnmarshalPartitionDescriptor(buf []byte) PartitionDescriptor {
	var d PartitionDescriptor
	d.Type = buf[0]
	d.Subtype = buf[1]
	copy(d.Label[:], buf[4:20])
	d.Flags = binary.LittleEndian.Uint32(buf[20:24])
	d.Length = binary.LittleEndian.Uint32(buf[24:28])
	return d
}
