package core

import "testing"

func TestPartitionDescriptorRoundTrip(t *testing.T) {
	var d PartitionDescriptor
	d.Type = PartTypeApp
	d.Subtype = PartSubtypeAppOTA0
	d.SetLabel("app0")
	d.Flags = 0xdeadbeef
	d.Length = 0x10000

	got := UnmarshalPartitionDescriptor(d.MarshalBinary())
	if got != d {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, d)
	}
}

func TestPartitionDescriptorValid(t *testing.T) {
	d := PartitionDescriptor{Type: PartTypeInvalid}
	if d.Valid() {
		t.Fatal("Valid() = true for type 0xff, want false")
	}
	d.Type = PartTypeApp
	if !d.Valid() {
		t.Fatal("Valid() = false for type 0x00, want true")
	}
}

func TestPartitionDescriptorAlignedLength(t *testing.T) {
	cases := []struct {
		length uint32
		want   bool
	}{
		{0x10000, true},
		{0x20000, true},
		{0x8000, false},
		{0, true},
	}
	for _, c := range cases {
		d := PartitionDescriptor{Length: c.length}
		if got := d.AlignedLength(); got != c.want {
			t.Errorf("AlignedLength(%#x) = %v, want %v", c.length, got, c.want)
		}
	}
}
