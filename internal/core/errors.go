package core

import "fmt"

// Kind classifies an error for user display: the UI maps a Kind to its
// single-line phase message ("CHECKSUM MISMATCH ERROR", "ERASE ERROR",
// ...); the core never formats these strings itself.
type Kind int

const (
	_ Kind = iota
	KindFileIO
	KindFormat
	KindChecksum
	KindFlashIO
	KindCapacity
	KindPlatform
	KindAlloc
)

func (k Kind) String() string {
	switch k {
	case KindFileIO:
		return "FileIoError"
	case KindFormat:
		return "FormatError"
	case KindChecksum:
		return "ChecksumError"
	case KindFlashIO:
		return "FlashIoError"
	case KindCapacity:
		return "CapacityError"
	case KindPlatform:
		return "PlatformError"
	case KindAlloc:
		return "AllocError"
	default:
		return "UnknownError"
	}
}

// Error is the classified error type every core operation returns.
// Fatal reports whether flash state can no longer be recovered by
// unwinding: flash I/O and platform errors are always Fatal, and
// Install marks every error it returns after its first erase Fatal.
type Error struct {
	Kind  Kind
	Phase string // short phase label, e.g. "ERASE", "WRITE", "VERIFY"
	Fatal bool
	Err   error
}

func (e *Error) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, phase string, fatal bool, err error) *Error {
	return &Error{Kind: kind, Phase: phase, Fatal: fatal, Err: err}
}

func fileIOErr(phase string, err error) error   { return newErr(KindFileIO, phase, false, err) }
func formatErr(phase string, err error) error   { return newErr(KindFormat, phase, false, err) }
func checksumErr(phase string, err error) error { return newErr(KindChecksum, phase, false, err) }
func flashIOErr(phase string, err error) error  { return newErr(KindFlashIO, phase, true, err) }
func capacityErr(phase string, err error) error { return newErr(KindCapacity, phase, false, err) }
func platformErr(phase string, err error) error { return newErr(KindPlatform, phase, true, err) }
