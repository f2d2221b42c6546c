package pdu

import (
	"time"

	smpptime "github.com/smpplib/smpp/smpptime"
)

// QuerySm represents quering PDU.
type QuerySm struct {
	MessageID     string
	SourceAddrTon int
	SourceAddrNpi int
	SourceAddr    string
}

// CommandID implements pdu.PDU interface.
func (p QuerySm) CommandID() CommandID {
	return QuerySmID
}

// Response creates new QuerySmResp.
func (p QuerySm) Response(date time.Time, state, err int) *QuerySmResp {
	return &QuerySmResp{
		MessageID:    p.MessageID,
		FinalDate:    date,
		MessageState: state,
		ErrorCode:    err,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p QuerySm) MarshalBinary() ([]byte, error) {
	var out []byte
	var err error
	if out, err = writeCString(out, p.MessageID, 65, MessageIDFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, uint8(p.SourceAddrTon))
	out = writeUint8(out, uint8(p.SourceAddrNpi))
	if out, err = writeCString(out, p.SourceAddr, 21, SourceAddrFld); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *QuerySm) UnmarshalBinary(body []byte) error {
	c := newCursor(body)
	s, err := c.readCString(65, MessageIDFld)
	if err != nil {
		return err
	}
	p.MessageID = s
	b, err := c.readUint8(SourceAddrTonFld)
	if err != nil {
		return err
	}
	p.SourceAddrTon = int(b)
	if b, err = c.readUint8(SourceAddrNpiFld); err != nil {
		return err
	}
	p.SourceAddrNpi = int(b)
	if s, err = c.readCString(21, SourceAddrFld); err != nil {
		return err
	}
	p.SourceAddr = s
	return nil
}

// QuerySmResp holds response to query_sm PDU.
type QuerySmResp struct {
	MessageID    string
	FinalDate    time.Time
	MessageState int
	ErrorCode    int
}

// CommandID implements pdu.PDU interface.
func (p QuerySmResp) CommandID() CommandID {
	return QuerySmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p QuerySmResp) MarshalBinary() ([]byte, error) {
	var out []byte
	var err error
	if out, err = writeCString(out, p.MessageID, 65, MessageIDFld); err != nil {
		return nil, err
	}
	tm, err := writeTime(smpptime.Absolute, p.FinalDate)
	if err != nil {
		return nil, err
	}
	out = append(out, tm...)
	out = writeUint8(out, uint8(p.MessageState))
	out = writeUint8(out, uint8(p.ErrorCode))
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *QuerySmResp) UnmarshalBinary(body []byte) error {
	c := newCursor(body)
	s, err := c.readCString(65, MessageIDFld)
	if err != nil {
		return err
	}
	p.MessageID = s
	if s, err = c.readCString(17, FinalDateFld); err != nil {
		return err
	}
	t, err := smpptime.Parse([]byte(s))
	if err != nil {
		return err
	}
	p.FinalDate = t
	b, err := c.readUint8(MessageStateFld)
	if err != nil {
		return err
	}
	p.MessageState = int(b)
	if b, err = c.readUint8(ErrorCodeFld); err != nil {
		return err
	}
	p.ErrorCode = int(b)
	return nil
}
