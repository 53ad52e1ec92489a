package core

import (
	"encoding/binary"

	"github.com/ducalex/odroid-go-firmware/internal/flash"
)

// TableEntry is one 32-byte entry of the on-flash partition table:
// magic(2) | type(1) | subtype(1) | offset(4) | size(4) | label(16) | flags(4).
type TableEntry struct {
	Magic   uint16
	Type    uint8
	Subtype uint8
	Offset  uint32
	Size    uint32
	Label   [16]byte
	Flags   uint32
}

// Valid reports whether this entry is occupied.
func (e TableEntry) Valid() bool { return e.Magic == ESPPartitionMagic }

// SetLabel copies s into Label, NUL-padding or truncating to fit.
func (e *TableEntry) SetLabel(s string) {
	e.Label = [16]byte{}
	copy(e.Label[:], s)
}

// LabelString returns Label as a Go string, truncated at the first NUL.
func (e TableEntry) LabelString() string {
	n := 0
	for n < len(e.Label) && e.Label[n] != 0 {
		n++
	}
	return string(e.Label[:n])
}

func (e TableEntry) marshal() []byte {
	buf := make([]byte, PartitionTableEntrySize)
	binary.LittleEndian.PutUint16(buf[0:2], e.Magic)
	buf[2] = e.Type
	buf[3] = e.Subtype
	binary.LittleEndian.PutUint32(buf[4:8], e.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], e.Size)
	copy(buf[12:28], e.Label[:])
	binary.LittleEndian.PutUint32(buf[28:32], e.Flags)
	return buf
}

func unmarshalTableEntry(buf []byte) TableEntry {
	var e TableEntry
	e.Magic = binary.LittleEndian.Uint16(buf[0:2])
	e.Type = buf[2]
	e.Subtype = buf[3]
	e.Offset = binary.LittleEndian.Uint32(buf[4:8])
	e.Size = binary.LittleEndian.Uint32(buf[8:12])
	copy(e.Label[:], buf[12:28])
	e.Flags = binary.LittleEndian.Uint32(buf[28:32])
	return e
}

// PartitionTableReloader is the optional platform hook that makes the
// live partition table visible to the boot ROM without a reboot. When no
// implementation is available, callers must treat a reboot as required
// before the new table takes effect (see internal/core/bootflag).
type PartitionTableReloader interface {
	ReloadPartitionTable() error
}

// PartitionTableManager owns the in-memory copy of the 3 KiB partition
// table region and the single mutable commit point that rewrites it.
type PartitionTableManager struct {
	dev     flash.Device
	raw     []byte       // PartitionTableMaxLen bytes
	entries []TableEntry // parsed from raw

	factoryDataIndex int // index of the FACTORY_DATA entry, -1 if absent
	startTableEntry  int // first mutable slot = factoryDataIndex + 1
}

// NewPartitionTableManager constructs a manager bound to dev, with no
// table loaded yet; call Load before use.
func NewPartitionTableManager(dev flash.Device) *PartitionTableManager {
	return &PartitionTableManager{dev: dev, factoryDataIndex: -1, startTableEntry: -1}
}

// Load reads the partition table sector from the device and scans it.
func (m *PartitionTableManager) Load() error {
	raw := make([]byte, PartitionTableMaxLen)
	if err := m.dev.ReadAt(raw, PartitionTableOffset); err != nil {
		return flashIOErr("TABLE READ", err)
	}
	m.raw = raw
	m.entries = make([]TableEntry, PartitionTableMaxEntries)
	m.factoryDataIndex = -1
	m.startTableEntry = -1

	for i := 0; i < PartitionTableMaxEntries; i++ {
		m.entries[i] = unmarshalTableEntry(raw[i*PartitionTableEntrySize : (i+1)*PartitionTableEntrySize])
	}
	for i := 0; i < PartitionTableMaxEntries; i++ {
		e := m.entries[i]
		if e.Magic == MagicEmpty16 {
			break
		}
		if e.Valid() && e.Type == PartTypeData && e.Subtype == PartSubtypeFactoryData {
			m.factoryDataIndex = i
			m.startTableEntry = i + 1
			break
		}
	}
	return nil
}

// FactoryData returns the parsed FACTORY_DATA table entry describing the
// app registry's partition, or ok=false if the table has no such entry.
func (m *PartitionTableManager) FactoryData() (TableEntry, bool) {
	if m.factoryDataIndex < 0 {
		return TableEntry{}, false
	}
	return m.entries[m.factoryDataIndex], true
}

// Entries returns the table's entries up to the FACTORY_DATA entry
// (inclusive) — the fixed prefix the Installation Pipeline never
// touches.
func (m *PartitionTableManager) Entries() []TableEntry {
	if m.factoryDataIndex < 0 {
		return nil
	}
	return append([]TableEntry(nil), m.entries[:m.factoryDataIndex+1]...)
}

// MutableEntries returns the entries currently occupying the rewritable
// region (the slots an app's parts live in).
func (m *PartitionTableManager) MutableEntries() []TableEntry {
	if m.startTableEntry < 0 {
		return nil
	}
	var out []TableEntry
	for i := m.startTableEntry; i < PartitionTableMaxEntries; i++ {
		if !m.entries[i].Valid() {
			break
		}
		out = append(out, m.entries[i])
	}
	return out
}

// Rewrite replaces the mutable region of the table with parts, each
// placed consecutively starting at baseOffset, and commits it to flash.
// reloader may be nil; when it is nil or its hook fails, the
// caller must treat a reboot as required (rebootRequired is reported
// back so callers can drive the two-phase commit in
// internal/core/bootflag).
func (m *PartitionTableManager) Rewrite(parts []PartitionDescriptor, baseOffset uint32, reloader PartitionTableReloader) (rebootRequired bool, err error) {
	if m.startTableEntry < 0 {
		return false, platformErr("TABLE REWRITE", errNoFactoryPartition)
	}
	if m.startTableEntry+len(parts) > PartitionTableMaxEntries {
		return false, capacityErr("TABLE REWRITE", errTableFull)
	}

	// Blank all entries from startTableEntry onward.
	for i := m.startTableEntry; i < PartitionTableMaxEntries; i++ {
		m.entries[i] = TableEntry{Magic: MagicEmpty16}
	}

	offset := uint32(0)
	for i, p := range parts {
		m.entries[m.startTableEntry+i] = TableEntry{
			Magic:   ESPPartitionMagic,
			Type:    p.Type,
			Subtype: p.Subtype,
			Offset:  baseOffset + offset,
			Size:    p.Length,
			Label:   p.Label,
			Flags:   p.Flags,
		}
		offset += p.Length
	}

	// The fixed prefix (bootloader entries through FACTORY_DATA) is
	// carried over byte-for-byte; the mutable region is rebuilt, with
	// unused slots left 0xff the way an erased sector reads.
	raw := make([]byte, PartitionTableMaxLen)
	copy(raw, m.raw)
	for i := m.startTableEntry * PartitionTableEntrySize; i < len(raw); i++ {
		raw[i] = 0xff
	}
	for i := m.startTableEntry; i < PartitionTableMaxEntries; i++ {
		if m.entries[i].Valid() {
			copy(raw[i*PartitionTableEntrySize:(i+1)*PartitionTableEntrySize], m.entries[i].marshal())
		}
	}

	if err := m.dev.EraseAt(PartitionTableOffset, flash.BlockSize); err != nil {
		return false, flashIOErr("TABLE ERASE", err)
	}
	if err := m.dev.WriteAt(raw, PartitionTableOffset); err != nil {
		return false, flashIOErr("TABLE WRITE", err)
	}
	m.raw = raw

	if reloader != nil {
		if err := reloader.ReloadPartitionTable(); err == nil {
			return false, nil
		}
	}
	return true, nil
}

// InitTable writes a freshly erased partition table containing exactly
// one entry, FACTORY_DATA, at factoryDataOffset sized factoryDataSize,
// and erases that partition's extent. This is the one-time layout step
// a device (or a flash-image file standing in for one) needs before
// Load/Rewrite and LoadAppRegistry have anything to parse. Nothing
// later in the pipeline performs this step implicitly:
// a device ships with its factory data partition already provisioned.
func InitTable(dev flash.Device, factoryDataOffset, factoryDataSize uint32) error {
	entry := TableEntry{
		Magic:   ESPPartitionMagic,
		Type:    PartTypeData,
		Subtype: PartSubtypeFactoryData,
		Offset:  factoryDataOffset,
		Size:    factoryDataSize,
	}
	entry.SetLabel("factory_data")

	raw := make([]byte, PartitionTableMaxLen)
	for i := range raw {
		raw[i] = 0xff
	}
	copy(raw[0:PartitionTableEntrySize], entry.marshal())

	if err := dev.EraseAt(PartitionTableOffset, flash.BlockSize); err != nil {
		return flashIOErr("TABLE INIT ERASE", err)
	}
	if err := dev.WriteAt(raw, PartitionTableOffset); err != nil {
		return flashIOErr("TABLE INIT WRITE", err)
	}

	part := &flash.Partition{Device: dev, Base: int64(factoryDataOffset), Size: int64(factoryDataSize)}
	if err := part.EraseAll(); err != nil {
		return flashIOErr("FACTORY DATA INIT ERASE", err)
	}
	return nil
}
