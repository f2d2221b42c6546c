package pdu

import "encoding/binary"

// cursor reads schema-defined fields off of a PDU body in declared
// order, tracking remaining bytes the way a body deserializer needs to.
// It plays the role pduReader played in earlier iterations of this
// package, but every read now fails with a typed *CodecError instead of
// a bare errors.New, so callers can tell a short buffer from an
// over-length field.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) remaining() []byte {
	return c.buf[c.pos:]
}

func (c *cursor) len() int {
	return len(c.buf) - c.pos
}

func (c *cursor) readUint8(field string) (uint8, error) {
	if c.len() < 1 {
		return 0, truncated(field)
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) readUint16(field string) (uint16, error) {
	if c.len() < 2 {
		return 0, truncated(field)
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v, nil
}

func (c *cursor) readUint32(field string) (uint32, error) {
	if c.len() < 4 {
		return 0, truncated(field)
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

// readCString reads an ASCII run up to the first NUL. The run's length
// (excluding the NUL) must be strictly less than max; the NUL is
// consumed on success.
func (c *cursor) readCString(max int, field string) (string, error) {
	rest := c.remaining()
	nul := -1
	for i, b := range rest {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul == -1 {
		return "", truncated(field)
	}
	if nul >= max {
		return "", fieldTooLong(field)
	}
	s := string(rest[:nul])
	c.pos += nul + 1
	return s, nil
}

// readOctetString reads a one-byte length prefix followed by that many
// bytes. The length must be <= max (and, per schema, <= 255 since it is
// itself a u8).
func (c *cursor) readOctetString(max int, field string) (string, error) {
	n, err := c.readUint8(field)
	if err != nil {
		return "", err
	}
	if int(n) > c.len() {
		return "", truncated(field)
	}
	if int(n) > max {
		return "", fieldTooLong(field)
	}
	s := string(c.buf[c.pos : c.pos+int(n)])
	c.pos += int(n)
	return s, nil
}

func writeUint8(out []byte, v uint8) []byte {
	return append(out, v)
}

func writeUint16(out []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(out, b[:]...)
}

func writeUint32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

// writeCString appends val followed by a NUL. val's length must be
// strictly less than max.
func writeCString(out []byte, val string, max int, field string) ([]byte, error) {
	if len(val) >= max {
		return nil, fieldTooLong(field)
	}
	out = append(out, val...)
	out = append(out, 0)
	return out, nil
}

// writeOctetString appends a one-byte length prefix followed by val.
// val's length must be <= max and <= 255.
func writeOctetString(out []byte, val string, max int, field string) ([]byte, error) {
	if len(val) > max || len(val) > 255 {
		return nil, fieldTooLong(field)
	}
	out = append(out, byte(len(val)))
	out = append(out, val...)
	return out, nil
}
