package core

// Compact removes the app at index (which must not be the last occupied
// slot — that fast path lives in AppRegistry.Remove) and shifts every
// following byte on raw flash downward to close the gap.
//
// The shift proceeds strictly low-to-high: each source sector lies
// strictly above its destination, so reading ahead before erasing behind
// is always safe even though source and destination ranges overlap
// across iterations. Registry persistence happens last, after every
// sector has moved — a crash before that point still finds the
// pre-shift registry on flash, which is the only state that remains
// self-consistent with the not-yet-fully-shifted flash contents.
func Compact(r *AppRegistry, index int, progress ProgressFunc) error {
	app := r.apps[index]
	gap := app.EndOffset - app.StartOffset + 1
	flashEnd := r.apps[r.count-1].End()

	// Shift registry entries left, adjusting offsets.
	for i := index + 1; i < r.count; i++ {
		moved := r.apps[i]
		moved.StartOffset -= gap
		moved.EndOffset -= gap
		r.apps[i-1] = moved
	}
	r.count--

	// Shift the raw flash bytes down by gap, one block at a time,
	// strictly ascending source and destination addresses.
	newFlashOffset := app.StartOffset
	total := int64(flashEnd) - int64(newFlashOffset)
	buf := make([]byte, BlockSize)
	moved := int64(0)
	for addr := int64(newFlashOffset); addr < int64(flashEnd); addr += BlockSize {
		if err := r.dev.ReadAt(buf, addr+int64(gap)); err != nil {
			return flashIOErr("COMPACT READ", err)
		}
		if err := r.dev.EraseAt(addr, BlockSize); err != nil {
			return flashIOErr("COMPACT ERASE", err)
		}
		if err := r.dev.WriteAt(buf, addr); err != nil {
			return flashIOErr("COMPACT WRITE", err)
		}
		moved += BlockSize
		report(progress, PhaseCompacting, moved, total)
	}

	r.recomputeFrontier()

	// Persist the registry last; see above.
	return r.persist()
}
