package pdu

import "encoding/binary"

// HeaderLen is the fixed size, in bytes, of every PDU header.
const HeaderLen = 16

// SerializeHeader writes the 16-byte PDU header into buf[:16], big-endian.
// buf must have at least HeaderLen bytes of capacity from offset 0.
func SerializeHeader(buf []byte, commandLength uint32, commandID CommandID, status Status, seq uint32) {
	binary.BigEndian.PutUint32(buf[0:4], commandLength)
	binary.BigEndian.PutUint32(buf[4:8], uint32(commandID))
	binary.BigEndian.PutUint32(buf[8:12], uint32(status))
	binary.BigEndian.PutUint32(buf[12:16], seq)
}

// DeserializeHeader reads the 16-byte PDU header from buf[:16].
func DeserializeHeader(buf []byte) (commandLength uint32, commandID CommandID, status Status, seq uint32) {
	commandLength = binary.BigEndian.Uint32(buf[0:4])
	commandID = CommandID(binary.BigEndian.Uint32(buf[4:8]))
	status = Status(binary.BigEndian.Uint32(buf[8:12]))
	seq = binary.BigEndian.Uint32(buf[12:16])
	return
}

// Header is the parsed view of a PDU's 16-byte header, used by the
// session runtime and by tests that want to inspect framing without
// decoding the body.
type Header struct {
	Length    uint32
	CommandID CommandID
	Status    Status
	Sequence  uint32
}

// ParseHeader parses buf[:16] into a Header. Callers must ensure
// len(buf) >= HeaderLen; the session runtime only calls this once its
// receive buffer holds a full header.
func ParseHeader(buf []byte) Header {
	length, cmd, status, seq := DeserializeHeader(buf)
	return Header{Length: length, CommandID: cmd, Status: status, Sequence: seq}
}
