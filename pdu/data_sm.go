package pdu

// DataSm transfers data between an ESME and an SMSC in an
// interactive session, analogous to submit_sm/deliver_sm but without
// the scheduling and validity fields — used by IP-based transports
// that keep their own delivery guarantees.
type DataSm struct {
	ServiceType        string
	SourceAddrTon      int
	SourceAddrNpi      int
	SourceAddr         string
	DestAddrTon        int
	DestAddrNpi        int
	DestinationAddr    string
	EsmClass           EsmClass
	RegisteredDelivery RegisteredDelivery
	DataCoding         int
	Options            *Options
}

// CommandID implements pdu.PDU interface.
func (p DataSm) CommandID() CommandID {
	return DataSmID
}

// Response creates new DataSmResp.
func (p DataSm) Response(msgID string) *DataSmResp {
	return &DataSmResp{MessageID: msgID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p DataSm) MarshalBinary() ([]byte, error) {
	var out []byte
	var err error
	if out, err = writeCString(out, p.ServiceType, 6, ServiceTypeFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, uint8(p.SourceAddrTon))
	out = writeUint8(out, uint8(p.SourceAddrNpi))
	if out, err = writeCString(out, p.SourceAddr, 65, SourceAddrFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, uint8(p.DestAddrTon))
	out = writeUint8(out, uint8(p.DestAddrNpi))
	if out, err = writeCString(out, p.DestinationAddr, 65, DestinationAddrFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, p.EsmClass.Byte())
	out = writeUint8(out, p.RegisteredDelivery.Byte())
	out = writeUint8(out, uint8(p.DataCoding))
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
func (p *DataSm) UnmarshalBinary(body []byte) error {
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
	if s, err = c.readCString(65, SourceAddrFld); err != nil {
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
	if s, err = c.readCString(65, DestinationAddrFld); err != nil {
		return err
	}
	p.DestinationAddr = s
	if b, err = c.readUint8(EsmClassFld); err != nil {
		return err
	}
	p.EsmClass = ParseEsmClass(b)
	if b, err = c.readUint8(RegisteredDeliveryFld); err != nil {
		return err
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(b)
	if b, err = c.readUint8(DataCodingFld); err != nil {
		return err
	}
	p.DataCoding = int(b)
	if c.len() == 0 {
		return nil
	}
	if p.Options == nil {
		p.Options = NewOptions()
	}
	return p.Options.UnmarshalBinary(c.remaining())
}

// DataSmResp holds the response to data_sm.
type DataSmResp struct {
	MessageID string
	Options   *Options
}

// CommandID implements pdu.PDU interface.
func (p DataSmResp) CommandID() CommandID {
	return DataSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p DataSmResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.MessageID, p.Options, MessageIDFld)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *DataSmResp) UnmarshalBinary(body []byte) error {
	var err error
	p.MessageID, p.Options, err = cStringOptsRespUnmarshal(body, MessageIDFld)
	return err
}
