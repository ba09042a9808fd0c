// Package api includes small value types shared by the public acsvm package
// and the internal implementation packages, so that neither internal/acsmod
// nor internal/engine need to import "up" into the root package just to
// describe a script type or flag.
package api

import "fmt"

// ScriptType classifies a script descriptor (§3 "Script (static descriptor)").
type ScriptType byte

const (
	ScriptTypeClosed ScriptType = iota
	ScriptTypeOpen
	ScriptTypeRespawn
	ScriptTypeDeath
	ScriptTypeEnter
	ScriptTypePickup
	ScriptTypeBlueReturn
	ScriptTypeRedReturn
	ScriptTypeWhiteReturn
	_
	_
	_
	ScriptTypeLightning // = 12
	ScriptTypeUnloading
	ScriptTypeDisconnect
	ScriptTypeReturn
	ScriptTypeEvent
	ScriptTypeKill
	ScriptTypeReopen
	ScriptTypeUnknown
)

// ScriptTypeName returns the spec's lowercase name for t, or "unknown" for
// any code the loader did not recognize.
func ScriptTypeName(t ScriptType) string {
	switch t {
	case ScriptTypeClosed:
		return "closed"
	case ScriptTypeOpen:
		return "open"
	case ScriptTypeRespawn:
		return "respawn"
	case ScriptTypeDeath:
		return "death"
	case ScriptTypeEnter:
		return "enter"
	case ScriptTypePickup:
		return "pickup"
	case ScriptTypeBlueReturn:
		return "bluereturn"
	case ScriptTypeRedReturn:
		return "redreturn"
	case ScriptTypeWhiteReturn:
		return "whitereturn"
	case ScriptTypeLightning:
		return "lightning"
	case ScriptTypeUnloading:
		return "unloading"
	case ScriptTypeDisconnect:
		return "disconnect"
	case ScriptTypeReturn:
		return "return"
	case ScriptTypeEvent:
		return "event"
	case ScriptTypeKill:
		return "kill"
	case ScriptTypeReopen:
		return "reopen"
	default:
		return "unknown"
	}
}

// ScriptFlag is a bitmask flag recognized on SFLG records.
type ScriptFlag uint16

const (
	// ScriptFlagNet marks a script as running identically on all net peers.
	ScriptFlagNet ScriptFlag = 0x1
	// ScriptFlagClientSide marks a script as executed independently per client.
	ScriptFlagClientSide ScriptFlag = 0x2

	// scriptFlagKnownMask is the union of flags this VM recognizes; any
	// other set bit is tolerated and reported as a load warning (§4.2 SFLG).
	scriptFlagKnownMask = ScriptFlagNet | ScriptFlagClientSide
)

// UnknownBits returns the bits of flags this VM does not recognize.
func (f ScriptFlag) UnknownBits() ScriptFlag {
	return f &^ scriptFlagKnownMask
}

// InstanceState is the scheduling state of a live script instance (§3 "Instance").
type InstanceState byte

const (
	StateTerminated InstanceState = iota
	StateRunning
	StateSuspended
	StateDelayed
	StateWaiting
)

func (s InstanceState) String() string {
	switch s {
	case StateTerminated:
		return "terminated"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateDelayed:
		return "delayed"
	case StateWaiting:
		return "waiting"
	default:
		return fmt.Sprintf("InstanceState(%d)", s)
	}
}

// Format is the object-file format variant decoded by the Object Reader (§4.1).
type Format byte

const (
	FormatZero Format = iota
	FormatBigE
	FormatLittleE
	FormatUnknown
)

// SmallCode reports whether f implies variable-length (1–2 byte) opcode
// encoding, which is true only for the little-endian ("ACSe") variant.
func (f Format) SmallCode() bool { return f == FormatLittleE }
