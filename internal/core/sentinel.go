package core

import "errors"

// Sentinel errors wrapped by the classified Error type; tests and
// callers compare with errors.Is against these, not Kind alone, when
// they need the specific condition.
var (
	errNoFactoryPartition = errors.New("no FACTORY_DATA partition in table")
	errTableFull          = errors.New("partition table has no room for this many parts")

	errTooManyParts     = errors.New("firmware file has more than PartsMax parts")
	errInvalidPartType  = errors.New("partition type is invalid (0xff)")
	errOutOfFlash       = errors.New("partition would extend past end of flash")
	errMisaligned       = errors.New("flash address is not 64KiB-aligned")
	errLengthMisaligned = errors.New("partition length is not a multiple of 64KiB")
	errPartTooLong      = errors.New("part payload length exceeds descriptor length")
	errBadMagic         = errors.New("firmware file magic header mismatch")
	errRegistryFull     = errors.New("app registry has no free slot")
	errNoSuchApp        = errors.New("no app at that index")

	errInstallCancelled = errors.New("install cancelled at confirmation prompt")
	errNoSuchPartition  = errors.New("no OTA-0 app partition in the live table")
	errChecksumMismatch = errors.New("CRC-32 does not match trailing checksum")
)
