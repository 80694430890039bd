package ir

import "fmt"

// Command is a decoded or to-be-encoded remote control command. Address
// and Data widths are protocol specific; Toggle is only meaningful for
// RC6. Commands are value objects: constructing one does not allocate,
// and copying one is always safe.
type Command struct {
	Protocol Protocol
	Address  uint32
	Data     uint32
	Toggle   bool
}

// ErrorKind classifies why a decoder rejected a frame (spec §7).
type ErrorKind int

const (
	// ErrorAddress: a frame completed but failed its address-complement
	// or range check.
	ErrorAddress ErrorKind = iota
	// ErrorData: an inter-edge interval fell outside any known pulse
	// width while a frame was in progress.
	ErrorData
	// ErrorOther: protocol-specific fault (parity, checksum, ...).
	ErrorOther
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorAddress:
		return "address"
	case ErrorData:
		return "data"
	default:
		return "other"
	}
}

// DecodeError is the payload of a decoder's Error state. Samples carries
// the offending sample count for diagnostics, when known.
type DecodeError struct {
	Kind    ErrorKind
	Samples uint32
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("ir: %s error at %d samples", e.Kind, e.Samples)
}

// StateKind tags the outcome of one Receiver.Event call.
type StateKind int

const (
	StateIdle StateKind = iota
	StateReceiving
	StateDone
	StateError
)

// State is returned by Event on every edge; exactly one of the fields
// besides Kind is meaningful, depending on Kind.
type State struct {
	Kind    StateKind
	Command Command
	Err     DecodeError
}

// Idle reports no frame currently in progress.
func Idle() State { return State{Kind: StateIdle} }

// Receiving reports a frame in progress; the caller must retain the decoder.
func Receiving() State { return State{Kind: StateReceiving} }

// Done reports a full, valid frame was just completed.
func Done(cmd Command) State { return State{Kind: StateDone, Command: cmd} }

// ErrState reports invalid timing; the caller should reset the decoder.
func ErrState(err DecodeError) State { return State{Kind: StateError, Err: err} }

// Decoder is the common contract every protocol state machine implements
// (spec §4.3): event-driven, bounded time, no allocation on the hot path.
type Decoder interface {
	// Event consumes one pin-change event and returns the resulting state.
	Event(rising bool, timestamp uint32) State
	// Reset returns the decoder to Idle, preserving any state a protocol
	// needs for repeat semantics (e.g. NEC's last decoded command).
	Reset()
}
