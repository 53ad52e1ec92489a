package core

import (
	"bytes"
	"testing"
)

// TestCompactorInteriorRemoval: installing A (64 KiB) then B
// (128 KiB) and removing A shifts B's bytes down to A's old offset and
// shrinks the frontier by exactly A's size.
func TestCompactorInteriorRemoval(t *testing.T) {
	dev, table, registry := newTestDevice(t, 4)

	aBase := registry.AllocationFrontier()
	aPayload := bytes.Repeat([]byte{0xaa}, 0x10000)
	if err := writeAndAppend(dev, registry, aBase, aPayload, "A"); err != nil {
		t.Fatal(err)
	}

	bBase := registry.AllocationFrontier()
	bPayload := bytes.Repeat([]byte{0xbb}, 0x20000)
	if err := writeAndAppend(dev, registry, bBase, bPayload, "B"); err != nil {
		t.Fatal(err)
	}

	frontierBefore := registry.AllocationFrontier()

	if err := registry.Remove(0, nil); err != nil {
		t.Fatalf("Remove(0): %v", err)
	}

	if registry.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", registry.Count())
	}
	if got := registry.App(0).DescriptionString(); got != "B" {
		t.Fatalf("App(0).DescriptionString() = %q, want %q", got, "B")
	}
	if got := registry.App(0).StartOffset; got != aBase {
		t.Fatalf("App(0).StartOffset = %#x, want %#x (A's old offset)", got, aBase)
	}

	gotBytes := make([]byte, len(bPayload))
	if err := dev.ReadAt(gotBytes, int64(aBase)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotBytes, bPayload) {
		t.Fatalf("B's bytes not found at A's old offset after compaction")
	}

	wantFrontier := AlignUp64K(frontierBefore - 0x10000)
	if got := registry.AllocationFrontier(); got != wantFrontier {
		t.Fatalf("AllocationFrontier() = %#x, want %#x", got, wantFrontier)
	}

	reloaded := reloadRegistry(t, dev, table)
	if reloaded.Count() != 1 || reloaded.App(0).DescriptionString() != "B" {
		t.Fatalf("persisted registry after compaction: count=%d", reloaded.Count())
	}
}

// TestCompactorMonotonicity: removing an interior app
// decreases every subsequent app's StartOffset by exactly gap.
func TestCompactorMonotonicity(t *testing.T) {
	_, _, registry := newTestDevice(t, 4)

	sizes := []uint32{0x10000, 0x20000, 0x10000}
	var startsBefore []uint32
	for i, size := range sizes {
		base := registry.AllocationFrontier()
		if err := registry.Append(testApp(base, size, string(rune('A'+i)))); err != nil {
			t.Fatal(err)
		}
	}
	for _, app := range registry.Apps() {
		startsBefore = append(startsBefore, app.StartOffset)
	}

	removed := registry.App(0)
	gap := removed.EndOffset - removed.StartOffset + 1

	if err := registry.Remove(0, nil); err != nil {
		t.Fatalf("Remove(0): %v", err)
	}

	apps := registry.Apps()
	if len(apps) != len(sizes)-1 {
		t.Fatalf("Count() = %d, want %d", len(apps), len(sizes)-1)
	}
	for j, app := range apps {
		want := startsBefore[j+1] - gap
		if app.StartOffset != want {
			t.Errorf("apps[%d].StartOffset = %#x, want %#x (startsBefore[%d]=%#x - gap=%#x)",
				j, app.StartOffset, want, j+1, startsBefore[j+1], gap)
		}
	}
}

// TestInstallThenUninstallInteriorIdempotence:
// append(A) then remove(index_of(A)) restores the registry's semantic
// state (same remaining app set, frontier restored).
func TestInstallThenUninstallInteriorIdempotence(t *testing.T) {
	_, _, registry := newTestDevice(t, 4)

	if err := registry.Append(testApp(registry.AllocationFrontier(), 0x10000, "B")); err != nil {
		t.Fatal(err)
	}
	frontierR := registry.AllocationFrontier()

	// Append A after B (A takes index 1), then remove(index_of(A)); A is
	// the last slot, so this removal takes the fast path.
	if err := registry.Append(testApp(registry.AllocationFrontier(), 0x10000, "A")); err != nil {
		t.Fatal(err)
	}
	if err := registry.Remove(1, nil); err != nil { // remove A, which is now last: fast path
		t.Fatal(err)
	}
	if registry.Count() != 1 || registry.App(0).DescriptionString() != "B" {
		t.Fatalf("registry after append+remove-last: count=%d", registry.Count())
	}
	if registry.AllocationFrontier() != frontierR {
		t.Fatalf("AllocationFrontier() = %#x, want %#x", registry.AllocationFrontier(), frontierR)
	}

	// Now exercise the true interior path: B sits at index 0, append A
	// at index 1, remove B (index 0) and confirm A alone remains with
	// the allocation frontier lowered by exactly B's size.
	if err := registry.Append(testApp(registry.AllocationFrontier(), 0x20000, "A2")); err != nil {
		t.Fatal(err)
	}
	frontierWithBoth := registry.AllocationFrontier()
	gap := registry.App(0).EndOffset - registry.App(0).StartOffset + 1

	if err := registry.Remove(0, nil); err != nil {
		t.Fatal(err)
	}
	if registry.Count() != 1 || registry.App(0).DescriptionString() != "A2" {
		t.Fatalf("registry after interior remove: count=%d app=%q", registry.Count(), registry.App(0).DescriptionString())
	}
	if got, want := registry.AllocationFrontier(), AlignUp64K(frontierWithBoth-gap); got != want {
		t.Fatalf("AllocationFrontier() = %#x, want %#x", got, want)
	}
}

// writeAndAppend writes payload at base on dev and appends a matching
// descriptor to registry, the way the Installation Pipeline would for a
// single-part app, without needing a full firmware-file round trip.
func writeAndAppend(dev interface {
	EraseAt(int64, int64) error
	WriteAt([]byte, int64) error
}, registry *AppRegistry, base uint32, payload []byte, description string) error {
	if err := dev.EraseAt(int64(base), int64(len(payload))); err != nil {
		return err
	}
	if err := dev.WriteAt(payload, int64(base)); err != nil {
		return err
	}
	return registry.Append(testApp(base, uint32(len(payload)), description))
}
