package pdu

import (
	"time"

	smpptime "github.com/smpplib/smpp/smpptime"
)

// ReplaceSm replaces the short message, data coding, and attributes of
// a previously submitted message that is still pending delivery,
// identified by its message_id, source address, and source addr ton/npi.
type ReplaceSm struct {
	MessageID            string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	ScheduleDeliveryTime time.Time
	ValidityPeriod       time.Time
	RegisteredDelivery   RegisteredDelivery
	SmDefaultMsgID       int
	ShortMessage         string
}

// CommandID implements pdu.PDU interface.
func (p ReplaceSm) CommandID() CommandID {
	return ReplaceSmID
}

// Response creates new ReplaceSmResp.
func (p ReplaceSm) Response() *ReplaceSmResp {
	return &ReplaceSmResp{}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p ReplaceSm) MarshalBinary() ([]byte, error) {
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
	tm, err := writeTime(smpptime.Absolute, p.ScheduleDeliveryTime)
	if err != nil {
		return nil, err
	}
	out = append(out, tm...)
	tm, err = writeTime(smpptime.Absolute, p.ValidityPeriod)
	if err != nil {
		return nil, err
	}
	out = append(out, tm...)
	out = writeUint8(out, p.RegisteredDelivery.Byte())
	out = writeUint8(out, uint8(p.SmDefaultMsgID))
	if out, err = writeOctetString(out, p.ShortMessage, 254, ShortMessageFld); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *ReplaceSm) UnmarshalBinary(body []byte) error {
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
	if s, err = c.readCString(17, ScheduleDeliveryTimeFld); err != nil {
		return err
	}
	t, err := smpptime.Parse([]byte(s))
	if err != nil {
		return err
	}
	p.ScheduleDeliveryTime = t
	if s, err = c.readCString(17, ValidityPeriodFld); err != nil {
		return err
	}
	if t, err = smpptime.Parse([]byte(s)); err != nil {
		return err
	}
	p.ValidityPeriod = t
	if b, err = c.readUint8(RegisteredDeliveryFld); err != nil {
		return err
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(b)
	if b, err = c.readUint8(SmDefaultMsgIDFld); err != nil {
		return err
	}
	p.SmDefaultMsgID = int(b)
	if s, err = c.readOctetString(254, ShortMessageFld); err != nil {
		return err
	}
	p.ShortMessage = s
	return nil
}

// ReplaceSmResp holds the (empty) response to replace_sm.
type ReplaceSmResp struct {
}

// CommandID implements pdu.PDU interface.
func (p ReplaceSmResp) CommandID() CommandID {
	return ReplaceSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p ReplaceSmResp) MarshalBinary() ([]byte, error) {
	return nil, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *ReplaceSmResp) UnmarshalBinary(body []byte) error {
	return nil
}
