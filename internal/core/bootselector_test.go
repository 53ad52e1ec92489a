package core

import (
	"testing"

	"github.com/ducalex/odroid-go-firmware/internal/core/bootflag"
)

type recordingOTASetter struct {
	entries []TableEntry
}

func (s *recordingOTASetter) SetBootPartition(entry TableEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type recordingRebooter struct {
	rebooted bool
}

func (r *recordingRebooter) Restart() error {
	r.rebooted = true
	return nil
}

// TestSelectAndBoot: with two installed apps, selecting the
// second rewrites the live table to its parts at its own base offset
// and marks its OTA-0 partition bootable.
func TestSelectAndBoot(t *testing.T) {
	_, table, registry := newTestDevice(t, 4)

	if err := registry.Append(testApp(registry.AllocationFrontier(), 0x10000, "A")); err != nil {
		t.Fatal(err)
	}
	if err := registry.Append(testApp(registry.AllocationFrontier(), 0x20000, "B")); err != nil {
		t.Fatal(err)
	}
	b := registry.App(1)

	setter := &recordingOTASetter{}
	rebooter := &recordingRebooter{}
	flag := bootflag.New(&bootflag.MemStore{})

	if err := SelectAndBoot(table, b, setter, nil, flag, rebooter); err != nil {
		t.Fatalf("SelectAndBoot: %v", err)
	}

	entries := table.MutableEntries()
	if len(entries) != 1 || entries[0].Offset != b.StartOffset || entries[0].Size != 0x20000 {
		t.Fatalf("table after SelectAndBoot = %+v, want B's part at %#x", entries, b.StartOffset)
	}

	// No live reload hook was supplied, so the OTA marker write is
	// deferred (the bootflag two-phase commit), and only finalization
	// after reboot asserts it.
	if len(setter.entries) != 0 {
		t.Fatalf("SetBootPartition called %d times before finalize, want 0", len(setter.entries))
	}
	needed, err := flag.Needed()
	if err != nil || !needed {
		t.Fatalf("bootflag.Needed() = %v, %v; want true, nil", needed, err)
	}
	if !rebooter.rebooted {
		t.Fatal("Rebooter.Restart() not called")
	}

	if err := FinalizeBootAfterReboot(table, setter, flag); err != nil {
		t.Fatalf("FinalizeBootAfterReboot: %v", err)
	}
	if len(setter.entries) != 1 {
		t.Fatalf("SetBootPartition called %d times after finalize, want 1", len(setter.entries))
	}
	if setter.entries[0].Offset != b.StartOffset {
		t.Fatalf("finalized boot partition offset = %#x, want %#x", setter.entries[0].Offset, b.StartOffset)
	}

	needed, err = flag.Needed()
	if err != nil || needed {
		t.Fatalf("bootflag.Needed() after finalize = %v, %v; want false, nil", needed, err)
	}
}

// stubReloader implements PartitionTableReloader and always succeeds,
// the case where the table is live-reloadable and no reboot is needed.
type stubReloader struct{}

func (stubReloader) ReloadPartitionTable() error { return nil }

func TestSelectAndBootWithReloaderFinalizesImmediately(t *testing.T) {
	_, table, registry := newTestDevice(t, 4)
	if err := registry.Append(testApp(registry.AllocationFrontier(), 0x10000, "A")); err != nil {
		t.Fatal(err)
	}
	a := registry.App(0)

	setter := &recordingOTASetter{}
	flag := bootflag.New(&bootflag.MemStore{})

	if err := SelectAndBoot(table, a, setter, stubReloader{}, flag, nil); err != nil {
		t.Fatalf("SelectAndBoot: %v", err)
	}
	if len(setter.entries) != 1 {
		t.Fatalf("SetBootPartition called %d times, want 1 (immediate finalize)", len(setter.entries))
	}
	needed, err := flag.Needed()
	if err != nil || needed {
		t.Fatalf("bootflag.Needed() = %v, %v; want false, nil", needed, err)
	}
}

func TestBootCurrentReassertsWithoutRewrite(t *testing.T) {
	_, table, registry := newTestDevice(t, 4)
	if err := registry.Append(testApp(registry.AllocationFrontier(), 0x10000, "A")); err != nil {
		t.Fatal(err)
	}
	a := registry.App(0)
	setter := &recordingOTASetter{}
	flag := bootflag.New(&bootflag.MemStore{})
	if err := SelectAndBoot(table, a, setter, stubReloader{}, flag, nil); err != nil {
		t.Fatal(err)
	}
	setter.entries = nil // reset so BootCurrent's call is unambiguous

	if err := BootCurrent(table, setter); err != nil {
		t.Fatalf("BootCurrent: %v", err)
	}
	if len(setter.entries) != 1 || setter.entries[0].Offset != a.StartOffset {
		t.Fatalf("BootCurrent did not re-assert the live table's app: %+v", setter.entries)
	}
}
