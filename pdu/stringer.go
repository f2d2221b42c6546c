package pdu

import "fmt"

// String renders a CommandID as its hex wire value, e.g. "0x00000004".
// Hand-written rather than `stringer`-generated since the full name
// table would just restate the constant names in constants.go.
func (c CommandID) String() string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// String renders a Status as its hex wire value.
func (s Status) String() string {
	return fmt.Sprintf("0x%08X", uint32(s))
}

// String renders a TagID as its hex wire value.
func (t TagID) String() string {
	return fmt.Sprintf("0x%04X", uint16(t))
}
