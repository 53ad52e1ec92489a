package core

import (
	"errors"
	"io"

	"github.com/ducalex/odroid-go-firmware/internal/flash"
)

// ConfirmFunc is asked once per install, after the description and tile
// have been read but before any flash is touched, whether to proceed.
// A nil ConfirmFunc always proceeds.
type ConfirmFunc func(description string, tile []byte) bool

// UtilitySource supplies the optional utility.bin passthrough
// partition: a ReadSeeker over the file's bytes plus its length. A nil
// UtilitySource skips the step entirely.
type UtilitySource struct {
	R    io.ReadSeeker
	Size int64
}

// InstallOptions configures one Install call.
type InstallOptions struct {
	Confirm  ConfirmFunc
	Utility  *UtilitySource
	Reloader PartitionTableReloader
}

// InstallResult is what a successful Install produced.
type InstallResult struct {
	App            AppDescriptor
	RebootRequired bool
}

// ErrInstallCancelled is returned when Confirm rejects the preview; no
// flash mutation has occurred.
var ErrInstallCancelled = formatErr("CONFIRM", errInstallCancelled)

// headerSize is the byte offset of the first part record: magic +
// description + tile.
const headerSize = int64(len(FirmwareMagic)) + DescriptionSize + TileLength

// Install runs the full installation pipeline against one firmware
// file: it validates the magic header, verifies the whole-file CRC-32
// before any write, then streams each part's payload into flash at BlockSize
// granularity, and finally commits the partition table and appends the
// new app to registry. dev is the raw device the parts are written to;
// table and registry must already be loaded against it.
//
// The first erase call is the point of no return: every error after it
// is flagged Fatal (see errors.go) since flash may be left holding a
// partial partition.
func Install(dev flash.Device, table *PartitionTableManager, registry *AppRegistry, r io.ReadSeeker, size int64, progress ProgressFunc, opts InstallOptions) (_ *InstallResult, err error) {
	base := registry.AllocationFrontier()

	erased := false
	defer func() {
		var e *Error
		if erased && errors.As(err, &e) {
			e.Fatal = true
		}
	}()

	fr := OpenFirmwareReader(r, size)
	description, err := fr.ReadHeader()
	if err != nil {
		return nil, err
	}
	tile, err := fr.ReadTile()
	if err != nil {
		return nil, err
	}

	if opts.Confirm != nil && !opts.Confirm(description, tile) {
		return nil, ErrInstallCancelled
	}

	// Verify the whole-file CRC before any write happens.
	wantCRC, err := fr.SeekCRC()
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fileIOErr("CHECKSUM SEEK", err)
	}
	if err := VerifyCRC(r, size-4, wantCRC, progress); err != nil {
		return nil, err
	}

	// Reposition past header+description+tile and start parts.
	if _, err := r.Seek(headerSize, io.SeekStart); err != nil {
		return nil, fileIOErr("PARTS SEEK", err)
	}

	cursor := base
	var parts []PartitionDescriptor

	for {
		hdr, payload, ok, err := fr.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if len(parts) >= PartsMax {
			return nil, capacityErr("PART VALIDATE", errTooManyParts)
		}
		if !hdr.Descriptor.Valid() {
			return nil, formatErr("PART VALIDATE", errInvalidPartType)
		}
		if !hdr.Descriptor.AlignedLength() {
			return nil, formatErr("PARTITION LENGTH ALIGNMENT", errLengthMisaligned)
		}
		if uint64(cursor)+uint64(hdr.Descriptor.Length) > FlashSize {
			return nil, capacityErr("PART VALIDATE", errOutOfFlash)
		}
		if cursor&0xffff != 0 {
			return nil, formatErr("PART VALIDATE", errMisaligned)
		}
		if hdr.Length > hdr.Descriptor.Length {
			return nil, formatErr("PART VALIDATE", errPartTooLong)
		}

		if hdr.Length > 0 {
			erased = true
			if err := writePart(dev, cursor, int64(hdr.Length), payload, progress); err != nil {
				return nil, err
			}
		}

		parts = append(parts, hdr.Descriptor)
		cursor += hdr.Descriptor.Length
	}

	// Optional utility.bin passthrough.
	if opts.Utility != nil {
		if len(parts) >= PartsMax {
			return nil, capacityErr("UTILITY PART", errTooManyParts)
		}
		desc, err := installUtility(dev, &cursor, opts.Utility, progress, &erased)
		if err != nil {
			return nil, err
		}
		if desc != nil {
			parts = append(parts, *desc)
		}
	}

	report(progress, PhaseFinalizing, 0, 1)

	// Commit: partition table first, then registry. Both happen only
	// after every payload write succeeded.
	rebootRequired, err := table.Rewrite(parts, base, opts.Reloader)
	if err != nil {
		return nil, err
	}

	app := AppDescriptor{
		StartOffset: base,
		EndOffset:   cursor - 1,
		PartsCount:  uint8(len(parts)),
	}
	app.SetDescription(description)
	copy(app.Tile[:], tile)
	copy(app.Parts[:], parts)

	if err := registry.Append(app); err != nil {
		return nil, err
	}

	report(progress, PhaseFinalizing, 1, 1)
	return &InstallResult{App: app, RebootRequired: rebootRequired}, nil
}

// writePart erases ceil(length/BlockSize) blocks starting at cursor and
// streams length bytes from payload into them in BlockSize chunks.
// Erase of a block always precedes its write.
func writePart(dev flash.Device, cursor uint32, length int64, payload io.Reader, progress ProgressFunc) error {
	eraseLen := flash.CeilBlocks(length)
	if err := dev.EraseAt(int64(cursor), eraseLen); err != nil {
		return flashIOErr("ERASE", err)
	}
	report(progress, PhaseErasing, eraseLen, eraseLen)

	buf := make([]byte, flash.BlockSize)
	var written int64
	for written < length {
		n := int64(flash.BlockSize)
		if remaining := length - written; remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(payload, buf[:n]); err != nil {
			return fileIOErr("WRITE READ", err)
		}
		if err := dev.WriteAt(buf[:n], int64(cursor)+written); err != nil {
			return flashIOErr("WRITE", err)
		}
		written += n
		report(progress, PhaseWriting, written, length)
	}
	return nil
}

// installUtility appends the well-known utility.bin passthrough
// partition at *cursor, rounding its length up to the 64 KiB boundary
// every partition descriptor requires. If inclusion would overflow
// flash the partition is silently skipped rather than failing the
// install.
func installUtility(dev flash.Device, cursor *uint32, src *UtilitySource, progress ProgressFunc, erased *bool) (*PartitionDescriptor, error) {
	length := AlignUp64K(uint32(src.Size))
	if uint64(*cursor)+uint64(length) > FlashSize {
		return nil, nil
	}

	if _, err := src.R.Seek(0, io.SeekStart); err != nil {
		return nil, fileIOErr("UTILITY SEEK", err)
	}
	*erased = true
	if err := writePart(dev, *cursor, src.Size, src.R, progress); err != nil {
		return nil, err
	}

	desc := PartitionDescriptor{
		Type:    PartTypeApp,
		Subtype: PartSubtypeAppTest,
		Length:  length,
	}
	desc.SetLabel("utility")
	*cursor += length
	return &desc, nil
}
