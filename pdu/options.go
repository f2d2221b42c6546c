package pdu

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Options is the TLV optional-parameter container appended to most PDU
// bodies. Unlike a bare Go map, it keeps entries ordered by ascending
// tag so that MarshalBinary produces a stable wire encoding and two
// Options built from the same tag/value pairs in any order compare
// structurally equal.
type Options struct {
	entries []optEntry
}

type optEntry struct {
	tag TagID
	val []byte
}

// NewOptions creates an empty, ordered options map.
func NewOptions() *Options {
	return &Options{}
}

func (o *Options) indexOf(tag TagID) int {
	for i, e := range o.entries {
		if e.tag == tag {
			return i
		}
	}
	return -1
}

// Set assigns new TLV field, replacing any existing value for tag.
func (o *Options) Set(tag TagID, val []byte) *Options {
	if i := o.indexOf(tag); i >= 0 {
		o.entries[i].val = val
		return o
	}
	o.entries = append(o.entries, optEntry{tag: tag, val: val})
	sort.Slice(o.entries, func(i, j int) bool { return o.entries[i].tag < o.entries[j].tag })
	return o
}

// SetSingle assigns new TLV field with one byte value.
func (o *Options) SetSingle(tag TagID, val int) *Options {
	return o.Set(tag, []byte{byte(val)})
}

// SetDouble assigns new TLV field with two bytes value.
func (o *Options) SetDouble(tag TagID, val int) *Options {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(val))
	return o.Set(tag, b)
}

// SetString assigns new TLV field with string value.
func (o *Options) SetString(tag TagID, val string) *Options {
	return o.Set(tag, []byte(val))
}

// SetCString assigns new TLV field with a NUL-terminated string value.
func (o *Options) SetCString(tag TagID, val string) *Options {
	return o.Set(tag, append([]byte(val), 0))
}

// Contains reports whether tag has an assigned value.
func (o *Options) Contains(tag TagID) bool {
	return o.indexOf(tag) >= 0
}

// Erase removes tag's value, if any, reporting whether it was present.
func (o *Options) Erase(tag TagID) bool {
	i := o.indexOf(tag)
	if i < 0 {
		return false
	}
	o.entries = append(o.entries[:i], o.entries[i+1:]...)
	return true
}

// Get tries to get byte value out of TLV field if present. If it's not it
// returns ok as false.
func (o *Options) Get(tag TagID) ([]byte, bool) {
	i := o.indexOf(tag)
	if i < 0 {
		return nil, false
	}
	return o.entries[i].val, true
}

// GetString returns tag's value as a byte slice, failing with a
// NotPresent codec error if tag is unset.
func (o *Options) GetString(tag TagID) ([]byte, error) {
	i := o.indexOf(tag)
	if i < 0 {
		return nil, notPresent(tag.String())
	}
	return o.entries[i].val, nil
}

// SetStringValue sets tag's raw value, failing with FieldTooLong if
// val exceeds 65535 bytes (the TLV length field is a u16).
func (o *Options) SetStringValue(tag TagID, val []byte) error {
	if len(val) > 65535 {
		return fieldTooLong(tag.String())
	}
	o.Set(tag, val)
	return nil
}

// GetEnumU8 returns tag's value interpreted as a single byte.
func (o *Options) GetEnumU8(tag TagID) (uint8, error) {
	v, err := o.GetString(tag)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, truncated(tag.String())
	}
	return v[0], nil
}

// SetEnumU8 assigns tag's value as a single byte.
func (o *Options) SetEnumU8(tag TagID, val uint8) *Options {
	return o.Set(tag, []byte{val})
}

// GetSingle returns tag value as one byte integer.
func (o *Options) GetSingle(tag TagID) (int, bool) {
	val, ok := o.Get(tag)
	if !ok || len(val) == 0 {
		return 0, false
	}
	return int(val[0]), true
}

// GetDouble returns tag value as two byte integer.
func (o *Options) GetDouble(tag TagID) (int, bool) {
	b, ok := o.Get(tag)
	if !ok || len(b) < 2 {
		return 0, false
	}
	return int(binary.BigEndian.Uint16(b)), true
}

// GetCString returns tag value as string, stripping a trailing NUL if present.
func (o *Options) GetCString(tag TagID) (string, bool) {
	b, ok := o.Get(tag)
	if !ok || len(b) == 0 {
		return "", false
	}
	if b[len(b)-1] == 0 {
		return string(b[:len(b)-1]), true
	}
	return string(b), true
}

// UserMessageReference is helper function for getting this option.
func (o *Options) UserMessageReference() int {
	val, _ := o.GetDouble(TagUserMessageReference)
	return val
}

// SarMsgRefNum is helper function for getting this option.
func (o *Options) SarMsgRefNum() int {
	val, _ := o.GetDouble(TagSarMsgRefNum)
	return val
}

// SarTotalSegments is helper function for getting this option.
func (o *Options) SarTotalSegments() int {
	val, _ := o.GetSingle(TagSarTotalSegments)
	return val
}

// SarSegmentSeqnum is helper function for getting this option.
func (o *Options) SarSegmentSeqnum() int {
	val, _ := o.GetSingle(TagSarSegmentSeqnum)
	return val
}

// ScInterfaceVersion is helper function for getting this option.
func (o *Options) ScInterfaceVersion() int {
	val, _ := o.GetSingle(TagScInterfaceVersion)
	return val
}

// MessagePayload is helper function for getting this option.
func (o *Options) MessagePayload() string {
	val, _ := o.Get(TagMessagePayload)
	return string(val)
}

// MessageState is helper function for getting this option.
func (o *Options) MessageState() int {
	val, _ := o.GetSingle(TagMessageState)
	return val
}

// ReceiptedMessageID is helper function for getting this option.
func (o *Options) ReceiptedMessageID() string {
	val, _ := o.GetCString(TagReceiptedMessageID)
	return val
}

// SetUserMessageReference is helper function for setting this option.
func (o *Options) SetUserMessageReference(val int) *Options {
	return o.SetDouble(TagUserMessageReference, val)
}

// SetSarMsgRefNum is helper function for setting this option.
func (o *Options) SetSarMsgRefNum(val int) *Options {
	return o.SetDouble(TagSarMsgRefNum, val)
}

// SetSarTotalSegments is helper function for setting this option.
func (o *Options) SetSarTotalSegments(val int) *Options {
	return o.SetSingle(TagSarTotalSegments, val)
}

// SetSarSegmentSeqnum is helper function for setting this option.
func (o *Options) SetSarSegmentSeqnum(val int) *Options {
	return o.SetSingle(TagSarSegmentSeqnum, val)
}

// SetScInterfaceVersion is helper function for setting this option.
func (o *Options) SetScInterfaceVersion(val int) *Options {
	return o.SetSingle(TagScInterfaceVersion, val)
}

// SetMessagePayload is helper function for setting this option.
func (o *Options) SetMessagePayload(val string) *Options {
	return o.SetString(TagMessagePayload, val)
}

// SetMessageState is helper function for setting this option.
func (o *Options) SetMessageState(val int) *Options {
	return o.SetSingle(TagMessageState, val)
}

// SetReceiptedMessageID is helper function for setting this option.
func (o *Options) SetReceiptedMessageID(val string) *Options {
	return o.SetCString(TagReceiptedMessageID, val)
}

// Equal reports structural equality: same tags, same values, regardless
// of the order Set was called in (entries are always kept tag-sorted).
func (o *Options) Equal(other *Options) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.entries) != len(other.entries) {
		return false
	}
	for i := range o.entries {
		if o.entries[i].tag != other.entries[i].tag {
			return false
		}
		if string(o.entries[i].val) != string(other.entries[i].val) {
			return false
		}
	}
	return true
}

// MarshalBinary implements encoding.BinaryMarshaler interface. Entries
// are emitted in ascending tag order.
func (o *Options) MarshalBinary() ([]byte, error) {
	var out []byte
	for _, e := range o.entries {
		if len(e.val) > 65535 {
			return nil, fieldTooLong(e.tag.String())
		}
		out = writeUint16(out, uint16(e.tag))
		out = writeUint16(out, uint16(len(e.val)))
		out = append(out, e.val...)
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface. It
// consumes (tag, length, value) triples until the buffer is exhausted,
// per §4.1's tlv_map deserialize rule.
func (o *Options) UnmarshalBinary(buf []byte) error {
	o.entries = nil
	n := 0
	for n < len(buf) {
		if len(buf)-n < 4 {
			return truncated("tlv_header")
		}
		tag := TagID(binary.BigEndian.Uint16(buf[n : n+2]))
		l := int(binary.BigEndian.Uint16(buf[n+2 : n+4]))
		if l > len(buf)-n-4 {
			return truncated(fmt.Sprintf("tlv_value(%s)", tag))
		}
		val := make([]byte, l)
		copy(val, buf[n+4:n+4+l])
		o.entries = append(o.entries, optEntry{tag: tag, val: val})
		n += 4 + l
	}
	sort.SliceStable(o.entries, func(i, j int) bool { return o.entries[i].tag < o.entries[j].tag })
	return nil
}
