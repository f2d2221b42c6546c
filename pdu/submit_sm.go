package pdu

import (
	"time"

	smpptime "github.com/smpplib/smpp/smpptime"
)

// SubmitSm contains mandatory fields for submiting short message.
// There is no need to set SmLength it will be automatically set when
// encoding pdu to binary representation.
// Also long ShortMessages will be marshaled as payload in options.
type SubmitSm struct {
	ServiceType          string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	DestAddrTon          int
	DestAddrNpi          int
	DestinationAddr      string
	EsmClass             EsmClass
	ProtocolID           int
	PriorityFlag         int
	ScheduleDeliveryTime time.Time
	ValidityPeriod       time.Time
	RegisteredDelivery   RegisteredDelivery
	ReplaceIfPresentFlag int
	DataCoding           int
	SmDefaultMsgID       int
	ShortMessage         string
	Options              *Options
}

// CommandID implements pdu.PDU interface.
func (p SubmitSm) CommandID() CommandID {
	return SubmitSmID
}

// Response creates new SubmitSmResp.
func (p SubmitSm) Response(msgID string) *SubmitSmResp {
	return &SubmitSmResp{
		MessageID: msgID,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitSm) MarshalBinary() ([]byte, error) {
	var out []byte
	var err error
	if out, err = writeCString(out, p.ServiceType, 6, ServiceTypeFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, uint8(p.SourceAddrTon))
	out = writeUint8(out, uint8(p.SourceAddrNpi))
	if out, err = writeCString(out, p.SourceAddr, 21, SourceAddrFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, uint8(p.DestAddrTon))
	out = writeUint8(out, uint8(p.DestAddrNpi))
	if out, err = writeCString(out, p.DestinationAddr, 21, DestinationAddrFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, p.EsmClass.Byte())
	out = writeUint8(out, uint8(p.ProtocolID))
	out = writeUint8(out, uint8(p.PriorityFlag))
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
	out = writeUint8(out, uint8(p.ReplaceIfPresentFlag))
	out = writeUint8(out, uint8(p.DataCoding))
	out = writeUint8(out, uint8(p.SmDefaultMsgID))
	if out, err = writeOctetString(out, p.ShortMessage, 254, ShortMessageFld); err != nil {
		return nil, err
	}
	if p.Options == nil {
		return out, nil
	}
	opts, err := p.Options.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, opts...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *SubmitSm) UnmarshalBinary(body []byte) error {
	c := newCursor(body)
	s, err := c.readCString(6, ServiceTypeFld)
	if err != nil {
		return err
	}
	p.ServiceType = s
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
	if b, err = c.readUint8(DestAddrTonFld); err != nil {
		return err
	}
	p.DestAddrTon = int(b)
	if b, err = c.readUint8(DestAddrNpiFld); err != nil {
		return err
	}
	p.DestAddrNpi = int(b)
	if s, err = c.readCString(21, DestinationAddrFld); err != nil {
		return err
	}
	p.DestinationAddr = s
	if b, err = c.readUint8(EsmClassFld); err != nil {
		return err
	}
	p.EsmClass = ParseEsmClass(b)
	if b, err = c.readUint8(ProtocolIDFld); err != nil {
		return err
	}
	p.ProtocolID = int(b)
	if b, err = c.readUint8(PriorityFlagFld); err != nil {
		return err
	}
	p.PriorityFlag = int(b)
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
	if b, err = c.readUint8(ReplaceIfPresentFlagFld); err != nil {
		return err
	}
	p.ReplaceIfPresentFlag = int(b)
	if b, err = c.readUint8(DataCodingFld); err != nil {
		return err
	}
	p.DataCoding = int(b)
	if b, err = c.readUint8(SmDefaultMsgIDFld); err != nil {
		return err
	}
	p.SmDefaultMsgID = int(b)
	if s, err = c.readOctetString(254, ShortMessageFld); err != nil {
		return err
	}
	p.ShortMessage = s
	if c.len() == 0 {
		return nil
	}
	if p.Options == nil {
		p.Options = NewOptions()
	}
	return p.Options.UnmarshalBinary(c.remaining())
}

// SubmitSmResp contains mandatory fields for submit_sm response.
type SubmitSmResp struct {
	MessageID string
	Options   *Options
}

// CommandID implements pdu.PDU interface.
func (p SubmitSmResp) CommandID() CommandID {
	return SubmitSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitSmResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.MessageID, p.Options, MessageIDFld)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *SubmitSmResp) UnmarshalBinary(body []byte) error {
	var err error
	p.MessageID, p.Options, err = cStringOptsRespUnmarshal(body, MessageIDFld)
	return err
}
