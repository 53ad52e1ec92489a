package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAppDescriptorRoundTrip(t *testing.T) {
	app := testApp(0x40000, 0x20000, "my app")
	app.Magic = AppMagic
	copy(app.Tile[:4], []byte{1, 2, 3, 4})

	got := UnmarshalAppDescriptor(app.MarshalBinary())

	if diff := cmp.Diff(app, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSetDescriptionForcesTrailingZero(t *testing.T) {
	var app AppDescriptor
	long := make([]byte, DescriptionSize+10)
	for i := range long {
		long[i] = 'x'
	}
	app.SetDescription(string(long))
	if app.Description[DescriptionSize-1] != 0 {
		t.Fatalf("last byte = %#x, want 0", app.Description[DescriptionSize-1])
	}
	if len(app.DescriptionString()) != DescriptionSize-1 {
		t.Fatalf("DescriptionString() length = %d, want %d", len(app.DescriptionString()), DescriptionSize-1)
	}
}

func TestAppDescriptorEnd(t *testing.T) {
	app := testApp(0x10000, 0x10000, "a")
	if got, want := app.End(), uint32(0x20000); got != want {
		t.Errorf("End() = %#x, want %#x", got, want)
	}
}

func TestAppDescriptorSizeLayout(t *testing.T) {
	want := 2 + 4 + 4 + 40 + 20*28 + 1 + 8256 + 256
	if AppDescriptorSize != want {
		t.Fatalf("AppDescriptorSize = %d, want %d (layout must stay bit-exact)", AppDescriptorSize, want)
	}
}
