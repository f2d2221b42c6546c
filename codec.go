package smpp

import (
	"fmt"
	"io"
	"sync"

	"github.com/smpplib/smpp/pdu"
)

// Sequencer issues sequence numbers for outgoing PDUs. Numbers wrap
// from SequenceEnd back to SequenceStart per §5.1.5 of the spec this
// session runtime implements.
type Sequencer interface {
	Next() uint32
}

type sequencer struct {
	mu  sync.Mutex
	seq uint32
}

// NewSequencer creates a Sequencer that starts at SequenceStart and
// wraps back to it after SequenceEnd.
func NewSequencer() Sequencer {
	return &sequencer{seq: SequenceStart - 1}
}

func (s *sequencer) Next() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq >= SequenceEnd {
		s.seq = SequenceStart - 1
	}
	s.seq++
	return s.seq
}

// EncodeOption customizes a single Encoder.Encode call.
type EncodeOption func(*encodeOpts)

type encodeOpts struct {
	status pdu.Status
	seq    uint32
	hasSeq bool
}

// EncodeStatus overrides the command_status written for this PDU.
// Used by Session.Respond to reply with the caller's status, including
// non-OK ones.
func EncodeStatus(status pdu.Status) EncodeOption {
	return func(o *encodeOpts) { o.status = status }
}

// EncodeSeq overrides the sequence_number written for this PDU,
// bypassing the Encoder's Sequencer. Used to echo back the sequence
// number of the request being responded to.
func EncodeSeq(seq uint32) EncodeOption {
	return func(o *encodeOpts) { o.seq = seq; o.hasSeq = true }
}

// Encoder serializes PDUs onto the wire: header plus marshaled body,
// command_length computed from the two, sequence_number assigned by
// its Sequencer unless EncodeSeq overrides it.
type Encoder struct {
	w   io.Writer
	seq Sequencer
}

// NewEncoder creates an Encoder writing to w. A nil Sequencer gets a
// fresh one starting at SequenceStart.
func NewEncoder(w io.Writer, seq Sequencer) *Encoder {
	if seq == nil {
		seq = NewSequencer()
	}
	return &Encoder{w: w, seq: seq}
}

// Encode marshals p, frames it with a header, and writes it to the
// underlying writer. It returns the sequence_number that was written.
//
// A failure to marshal p, or a marshaled size that violates
// pdu.MaxPDUSize, is returned wrapped in an unexported encodeFailure —
// the caller (Session) maps that to KindSerializationFailed, leaving
// the session itself usable. Any other error comes from the
// underlying Write and means bytes may have partially reached the
// peer; the caller maps that to KindIoError and tears the session
// down.
func (e *Encoder) Encode(p pdu.PDU, opts ...EncodeOption) (uint32, error) {
	var o encodeOpts
	for _, opt := range opts {
		opt(&o)
	}
	seq := o.seq
	if !o.hasSeq {
		seq = e.seq.Next()
	}
	body, err := p.MarshalBinary()
	if err != nil {
		return 0, &encodeFailure{err: fmt.Errorf("smpp: encoding %s: %w", p.CommandID(), err)}
	}
	total := pdu.HeaderLen + len(body)
	if total > pdu.MaxPDUSize {
		return 0, &encodeFailure{err: fmt.Errorf("smpp: encoding %s: pdu of %d bytes exceeds max size %d", p.CommandID(), total, pdu.MaxPDUSize)}
	}
	buf := make([]byte, total)
	pdu.SerializeHeader(buf, uint32(total), p.CommandID(), o.status, seq)
	copy(buf[pdu.HeaderLen:], body)
	if _, err := e.w.Write(buf); err != nil {
		return seq, err
	}
	return seq, nil
}

// readChunkSize is how much space ReadMore reserves per call — the
// 64 KiB receive_buffer.prepare size named by the receive loop's read
// step.
const readChunkSize = 64 * 1024

// Decoder reads framed PDUs off the wire, accumulating bytes in a
// frameBuffer until a full frame (per the header's command_length) is
// available. A body that fails to unmarshal is surfaced as a
// *pdu.InvalidPDU rather than an error, since the header's
// command_length already tells the decoder exactly how many bytes to
// consume — one malformed PDU can never desynchronize the stream.
//
// ReadMore and DecodeBuffered split network I/O from frame parsing so
// the session runtime can race each read against its enquire_link
// timer without losing already-buffered bytes; Decode composes the two
// for callers that just want the next PDU, blocking as needed.
type Decoder struct {
	r   io.Reader
	buf *frameBuffer
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, buf: newFrameBuffer(frameBufferCap)}
}

// Buffered reports how many bytes are currently held, unparsed.
func (d *Decoder) Buffered() int {
	return d.buf.size()
}

// ReadMore performs a single read from the underlying reader into the
// buffer. It does not parse or consume anything.
func (d *Decoder) ReadMore() (int, error) {
	space, err := d.buf.prepare(readChunkSize)
	if err != nil {
		return 0, err
	}
	n, err := d.r.Read(space)
	if n > 0 {
		d.buf.commit(n)
	}
	return n, err
}

// DecodeBuffered attempts to parse one full frame out of bytes already
// buffered, without performing any reads. ok is false when fewer than
// a full frame is currently buffered; a non-nil err is a framing
// failure (header names an impossible command_length) rather than a
// merely-incomplete buffer.
func (d *Decoder) DecodeBuffered() (hdr pdu.Header, p pdu.PDU, ok bool, err error) {
	if d.buf.size() < pdu.HeaderLen {
		return pdu.Header{}, nil, false, nil
	}
	hdr = pdu.ParseHeader(d.buf.data()[:pdu.HeaderLen])
	if int(hdr.Length) < pdu.HeaderLen {
		return hdr, nil, true, fmt.Errorf("smpp: invalid command_length %d", hdr.Length)
	}
	if int(hdr.Length) > pdu.MaxPDUSize {
		return hdr, nil, true, fmt.Errorf("smpp: command_length %d exceeds max pdu size %d", hdr.Length, pdu.MaxPDUSize)
	}
	if d.buf.size() < int(hdr.Length) {
		return hdr, nil, false, nil
	}
	body := make([]byte, int(hdr.Length)-pdu.HeaderLen)
	copy(body, d.buf.data()[pdu.HeaderLen:hdr.Length])
	d.buf.consume(int(hdr.Length))

	if !pdu.KnownCommand(hdr.CommandID) {
		return hdr, &pdu.InvalidPDU{
			OriginalCommandID: hdr.CommandID,
			RawBody:           body,
			Reason:            "unknown command_id",
		}, true, nil
	}
	p = pdu.NewPDU(hdr.CommandID)
	if err := p.UnmarshalBinary(body); err != nil {
		return hdr, &pdu.InvalidPDU{
			OriginalCommandID: hdr.CommandID,
			RawBody:           body,
			Reason:            err.Error(),
		}, true, nil
	}
	return hdr, p, true, nil
}

// Decode reads and blocks until one full PDU is available. Callers
// that need to race each underlying read against a timer (the session
// runtime's receive loop) should use ReadMore/DecodeBuffered directly
// instead.
func (d *Decoder) Decode() (pdu.Header, pdu.PDU, error) {
	for {
		hdr, p, ok, err := d.DecodeBuffered()
		if err != nil {
			return hdr, nil, err
		}
		if ok {
			return hdr, p, nil
		}
		if _, err := d.ReadMore(); err != nil {
			return pdu.Header{}, nil, err
		}
	}
}
