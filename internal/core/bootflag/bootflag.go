// Package bootflag implements the two-phase "set_boot_needed" commit:
// on platforms without a live partition-table reload hook, a reboot is
// the only way the SoC sees a newly written partition table, so the
// OTA-boot marker write has to be deferred to after that reboot. Phase
// 1 (SetNeeded) persists intent into RTC-backed no-init memory
// immediately before the reboot; phase 2 (Consume) runs at cold start,
// before the rest of the UI, and re-asserts the marker.
package bootflag

// NoInitStore is the collaborator interface over an RTC-backed no-init
// SRAM region: it survives a reboot without being cleared, unlike
// ordinary RAM. A hosted Go program has no such memory to address
// directly; callers supply an implementation backed by whatever the
// platform offers in its place.
type NoInitStore interface {
	Load() (bool, error)
	Store(needed bool) error
}

// Flag wraps a NoInitStore with boolean commit/consume semantics.
type Flag struct {
	store NoInitStore
}

// New returns a Flag backed by store.
func New(store NoInitStore) *Flag {
	return &Flag{store: store}
}

// SetNeeded persists whether OTA-boot finalization must run after the
// next reboot. Called immediately before BootSelector triggers a
// reboot (phase 1).
func (f *Flag) SetNeeded(needed bool) error {
	return f.store.Store(needed)
}

// Needed reports whether finalization is currently pending, without
// clearing it.
func (f *Flag) Needed() (bool, error) {
	return f.store.Load()
}

// Consume reports whether finalization was pending and, if so, clears
// the flag so it fires exactly once. Call this at cold start before
// starting the rest of the UI (phase 2).
func (f *Flag) Consume() (bool, error) {
	needed, err := f.store.Load()
	if err != nil || !needed {
		return needed, err
	}
	return true, f.store.Store(false)
}

// MemStore is an in-memory NoInitStore, standing in for the RTC no-init
// region in tests and in the file-backed CLI where no real MCU no-init
// SRAM exists.
type MemStore struct {
	needed bool
}

func (m *MemStore) Load() (bool, error)     { return m.needed, nil }
func (m *MemStore) Store(needed bool) error { m.needed = needed; return nil }
