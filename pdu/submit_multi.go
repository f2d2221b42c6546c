package pdu

import (
	"time"

	smpptime "github.com/smpplib/smpp/smpptime"
)

// DestAddress is one entry of a submit_multi destination list. When
// DestFlag is 1 it names an SME address (Ton/Npi/DestinationAddr);
// when it is 2 it names a predefined distribution list (DLName only).
type DestAddress struct {
	DestFlag        int
	Ton             int
	Npi             int
	DestinationAddr string
	DLName          string
}

func (d DestAddress) marshal(out []byte) ([]byte, error) {
	out = writeUint8(out, uint8(d.DestFlag))
	var err error
	if d.DestFlag == 2 {
		out, err = writeCString(out, d.DLName, 21, DlNameFld)
		return out, err
	}
	out = writeUint8(out, uint8(d.Ton))
	out = writeUint8(out, uint8(d.Npi))
	out, err = writeCString(out, d.DestinationAddr, 21, DestinationAddrFld)
	return out, err
}

func unmarshalDestAddress(c *cursor) (DestAddress, error) {
	var d DestAddress
	flag, err := c.readUint8(DestFlagFld)
	if err != nil {
		return d, err
	}
	d.DestFlag = int(flag)
	if d.DestFlag == 2 {
		s, err := c.readCString(21, DlNameFld)
		if err != nil {
			return d, err
		}
		d.DLName = s
		return d, nil
	}
	ton, err := c.readUint8(SourceAddrTonFld)
	if err != nil {
		return d, err
	}
	d.Ton = int(ton)
	npi, err := c.readUint8(SourceAddrNpiFld)
	if err != nil {
		return d, err
	}
	d.Npi = int(npi)
	s, err := c.readCString(21, DestinationAddrFld)
	if err != nil {
		return d, err
	}
	d.DestinationAddr = s
	return d, nil
}

// UnsuccessSme reports one destination submit_multi failed to queue
// to, along with the per-destination error status code.
type UnsuccessSme struct {
	Ton             int
	Npi             int
	DestinationAddr string
	ErrorStatusCode uint32
}

// SubmitMulti submits a short message for delivery to multiple
// destinations (SME addresses and/or predefined distribution lists)
// in a single PDU.
type SubmitMulti struct {
	ServiceType          string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	DestAddresses        []DestAddress
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
func (p SubmitMulti) CommandID() CommandID {
	return SubmitMultiID
}

// Response creates new SubmitMultiResp.
func (p SubmitMulti) Response(msgID string) *SubmitMultiResp {
	return &SubmitMultiResp{MessageID: msgID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitMulti) MarshalBinary() ([]byte, error) {
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
	if len(p.DestAddresses) > 255 {
		return nil, fieldTooLong(NumberOfDestsFld)
	}
	out = writeUint8(out, uint8(len(p.DestAddresses)))
	for _, d := range p.DestAddresses {
		if out, err = d.marshal(out); err != nil {
			return nil, err
		}
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
func (p *SubmitMulti) UnmarshalBinary(body []byte) error {
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
	n, err := c.readUint8(NumberOfDestsFld)
	if err != nil {
		return err
	}
	p.DestAddresses = make([]DestAddress, 0, n)
	for i := 0; i < int(n); i++ {
		d, err := unmarshalDestAddress(c)
		if err != nil {
			return err
		}
		p.DestAddresses = append(p.DestAddresses, d)
	}
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

// SubmitMultiResp holds the response to submit_multi, including the
// per-destination failures that prevented full fan-out.
type SubmitMultiResp struct {
	MessageID     string
	UnsuccessSmes []UnsuccessSme
}

// CommandID implements pdu.PDU interface.
func (p SubmitMultiResp) CommandID() CommandID {
	return SubmitMultiRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitMultiResp) MarshalBinary() ([]byte, error) {
	out, err := writeCString(nil, p.MessageID, 65, MessageIDFld)
	if err != nil {
		return nil, err
	}
	if len(p.UnsuccessSmes) > 255 {
		return nil, fieldTooLong(NoUnsuccessFld)
	}
	out = writeUint8(out, uint8(len(p.UnsuccessSmes)))
	for _, u := range p.UnsuccessSmes {
		out = writeUint8(out, uint8(u.Ton))
		out = writeUint8(out, uint8(u.Npi))
		if out, err = writeCString(out, u.DestinationAddr, 21, DestinationAddrFld); err != nil {
			return nil, err
		}
		out = writeUint32(out, u.ErrorStatusCode)
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *SubmitMultiResp) UnmarshalBinary(body []byte) error {
	c := newCursor(body)
	s, err := c.readCString(65, MessageIDFld)
	if err != nil {
		return err
	}
	p.MessageID = s
	n, err := c.readUint8(NoUnsuccessFld)
	if err != nil {
		return err
	}
	p.UnsuccessSmes = make([]UnsuccessSme, 0, n)
	for i := 0; i < int(n); i++ {
		var u UnsuccessSme
		b, err := c.readUint8(SourceAddrTonFld)
		if err != nil {
			return err
		}
		u.Ton = int(b)
		if b, err = c.readUint8(SourceAddrNpiFld); err != nil {
			return err
		}
		u.Npi = int(b)
		if s, err = c.readCString(21, DestinationAddrFld); err != nil {
			return err
		}
		u.DestinationAddr = s
		code, err := c.readUint32(ErrorStatusCodeFld)
		if err != nil {
			return err
		}
		u.ErrorStatusCode = code
		p.UnsuccessSmes = append(p.UnsuccessSmes, u)
	}
	return nil
}
