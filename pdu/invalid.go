package pdu

import "fmt"

// InvalidPDU carries a frame that could not be decoded: either its
// header named an unknown command_id, or it named a known one whose
// body failed schema deserialization. It is never produced by
// NewPDU/a schema decode directly — the root package's Decoder
// synthesizes it in both cases, per §4.2/§9, so that one malformed PDU
// never desynchronizes the stream (framing is governed solely by the
// header's command_length).
type InvalidPDU struct {
	// OriginalCommandID is the command_id the header named.
	OriginalCommandID CommandID
	// RawBody is the undecoded body bytes (excluding the 16-byte header).
	RawBody []byte
	// Reason is the deserialization error that triggered the fallback.
	Reason string
}

// CommandID implements pdu.PDU. InvalidPDU reports its own synthetic
// command id rather than the one it failed to decode, so that code
// switching on CommandID() never mistakes it for a real instance of the
// original variant.
func (p *InvalidPDU) CommandID() CommandID {
	return InvalidPDUID
}

// MarshalBinary is not meaningful for a carrier synthesized from a
// failed parse; InvalidPDU is never sent, only received.
func (p *InvalidPDU) MarshalBinary() ([]byte, error) {
	return nil, fmt.Errorf("smpp/pdu: invalid_pdu cannot be marshaled (original command_id %s: %s)", p.OriginalCommandID, p.Reason)
}

// UnmarshalBinary is not used; InvalidPDU is constructed directly by
// the session runtime with OriginalCommandID/RawBody/Reason already set.
func (p *InvalidPDU) UnmarshalBinary(body []byte) error {
	p.RawBody = body
	return nil
}
