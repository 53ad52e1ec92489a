package core

import (
	"github.com/ducalex/odroid-go-firmware/internal/flash"
)

// AppRegistry is the persistent on-flash array of installed-app
// descriptors: a dense prefix of occupied slots followed by erased
// (0xff) slots, backed by the reserved FACTORY_DATA partition.
type AppRegistry struct {
	dev  flash.Device
	part *flash.Partition

	capacity int // factoryDataSize / AppDescriptorSize, floor division
	apps     []AppDescriptor
	count    int

	factoryDataEnd uint32
	frontier       uint32
}

// LoadAppRegistry reads the entire factory-data partition and computes
// the occupied count and the allocation frontier.
func LoadAppRegistry(dev flash.Device, factoryData TableEntry) (*AppRegistry, error) {
	part := &flash.Partition{Device: dev, Base: int64(factoryData.Offset), Size: int64(factoryData.Size)}

	r := &AppRegistry{
		dev:            dev,
		part:           part,
		capacity:       int(factoryData.Size / AppDescriptorSize),
		factoryDataEnd: factoryData.Offset + factoryData.Size,
	}

	raw := make([]byte, factoryData.Size)
	if err := part.ReadAt(raw, 0); err != nil {
		return nil, flashIOErr("APP TABLE READ", err)
	}

	r.apps = make([]AppDescriptor, r.capacity)
	for i := 0; i < r.capacity; i++ {
		start := i * AppDescriptorSize
		r.apps[i] = UnmarshalAppDescriptor(raw[start : start+AppDescriptorSize])
	}

	r.count = 0
	for r.count < r.capacity && r.apps[r.count].Occupied() {
		r.count++
	}

	r.recomputeFrontier()
	return r, nil
}

// recomputeFrontier sets frontier to the last occupied app's end (or
// the factory-data partition's end when the registry is empty),
// rounded up to the 64 KiB allocation granularity.
func (r *AppRegistry) recomputeFrontier() {
	end := r.factoryDataEnd
	if r.count > 0 {
		if last := r.apps[r.count-1].End(); last > end {
			end = last
		}
	}
	r.frontier = AlignUp64K(end)
}

// AllocationFrontier returns the lowest flash offset available for a new
// app, always 64 KiB-aligned.
func (r *AppRegistry) AllocationFrontier() uint32 { return r.frontier }

// Count returns the number of occupied slots.
func (r *AppRegistry) Count() int { return r.count }

// Capacity returns the registry's slot capacity.
func (r *AppRegistry) Capacity() int { return r.capacity }

// App returns a copy of the occupied descriptor at index i.
func (r *AppRegistry) App(i int) AppDescriptor { return r.apps[i] }

// Apps returns copies of all occupied descriptors, in order.
func (r *AppRegistry) Apps() []AppDescriptor {
	out := make([]AppDescriptor, r.count)
	copy(out, r.apps[:r.count])
	return out
}

// Append adds app as the new last occupied slot and persists the
// registry.
func (r *AppRegistry) Append(app AppDescriptor) error {
	if r.count >= r.capacity {
		return capacityErr("APP TABLE APPEND", errRegistryFull)
	}
	app.Magic = AppMagic
	r.apps[r.count] = app
	r.count++
	r.recomputeFrontier()
	return r.persist()
}

// Remove deletes the app at index and persists the result. Removing the
// last occupied slot is the O(1) fast path; removing an interior slot
// defers to Compact, which also moves flash contents.
func (r *AppRegistry) Remove(index int, progress ProgressFunc) error {
	if index < 0 || index >= r.count {
		return formatErr("APP TABLE REMOVE", errNoSuchApp)
	}
	if index == r.count-1 {
		r.count--
		r.recomputeFrontier()
		return r.persist()
	}
	return Compact(r, index, progress)
}

// Clear empties the registry (the UI's "Erase all apps" action).
func (r *AppRegistry) Clear() error {
	r.count = 0
	r.recomputeFrontier()
	return r.persist()
}

// persist blanks all free slots and writes the entire factory-data
// partition back in one erase+write. The write always covers the
// partition's full declared size, even though capacity is computed
// dynamically as size/sizeof(AppDescriptor), so registries written
// under a different capacity computation still load.
func (r *AppRegistry) persist() error {
	raw := make([]byte, r.part.Size)
	for i := range raw {
		raw[i] = 0xff
	}
	for i := 0; i < r.count; i++ {
		start := i * AppDescriptorSize
		copy(raw[start:start+AppDescriptorSize], r.apps[i].MarshalBinary())
	}

	if err := r.part.EraseAll(); err != nil {
		return flashIOErr("APP TABLE ERASE", err)
	}
	if err := r.part.WriteAt(raw, 0); err != nil {
		return flashIOErr("APP TABLE WRITE", err)
	}
	return nil
}
