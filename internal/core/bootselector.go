package core

import "github.com/ducalex/odroid-go-firmware/internal/core/bootflag"

// OTABootSetter is the platform hook that marks which partition the
// boot ROM runs next. A failure here is fatal.
type OTABootSetter interface {
	SetBootPartition(entry TableEntry) error
}

// Rebooter is the platform restart hook.
type Rebooter interface {
	Restart() error
}

// SelectAndBoot rewrites the live partition table to the chosen app's
// parts, marks its OTA-0 partition bootable, and triggers a reboot.
//
// When the partition table reload hook is unavailable, Rewrite reports
// rebootRequired and the OTA marker cannot be set until the new table is
// actually live — flag, if non-nil, persists that intent so the caller's
// cold-start path can finish the job via bootflag.Flag.Consume before
// starting the rest of the UI. When the hook is
// available, the marker is set immediately and flag, if non-nil, is
// cleared so no stale finalization runs on the next boot.
func SelectAndBoot(table *PartitionTableManager, app AppDescriptor, setter OTABootSetter, reloader PartitionTableReloader, flag *bootflag.Flag, rebooter Rebooter) error {
	parts := app.Parts[:app.PartsCount]
	rebootRequired, err := table.Rewrite(parts, app.StartOffset, reloader)
	if err != nil {
		return err
	}

	if rebootRequired {
		if flag != nil {
			if err := flag.SetNeeded(true); err != nil {
				return platformErr("BOOT FLAG", err)
			}
		}
	} else {
		if err := finalizeBoot(table, setter); err != nil {
			return err
		}
		if flag != nil {
			if err := flag.SetNeeded(false); err != nil {
				return platformErr("BOOT FLAG", err)
			}
		}
	}

	if rebooter != nil {
		if err := rebooter.Restart(); err != nil {
			return platformErr("RESTART", err)
		}
	}
	return nil
}

// FinalizeBootAfterReboot runs phase 2 of the two-phase commit: called
// at cold start before the rest of the UI, it checks flag and, if
// finalization is pending, re-asserts the OTA marker against the
// already-live partition table (no table rewrite — the table was
// already committed before the reboot that got us here).
func FinalizeBootAfterReboot(table *PartitionTableManager, setter OTABootSetter, flag *bootflag.Flag) error {
	if flag == nil {
		return nil
	}
	pending, err := flag.Consume()
	if err != nil {
		return platformErr("BOOT FLAG", err)
	}
	if !pending {
		return nil
	}
	return finalizeBoot(table, setter)
}

// BootCurrent re-asserts the OTA marker for whichever app the live
// partition table already reflects, without any table rewrite: the
// menu-triggered "just boot what's installed" path.
func BootCurrent(table *PartitionTableManager, setter OTABootSetter) error {
	return finalizeBoot(table, setter)
}

// finalizeBoot locates the partition currently occupying the OTA-0 slot
// among the table's mutable entries and asks the platform to mark it
// bootable.
func finalizeBoot(table *PartitionTableManager, setter OTABootSetter) error {
	for _, e := range table.MutableEntries() {
		if e.Type == PartTypeApp && e.Subtype == PartSubtypeAppOTA0 {
			return setter.SetBootPartition(e)
		}
	}
	return platformErr("BOOT SELECT", errNoSuchPartition)
}
