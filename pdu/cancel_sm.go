package pdu

// CancelSm cancels a previously submitted message that is still
// pending delivery. An empty message_id with a non-empty
// source/destination pair cancels all matching messages.
type CancelSm struct {
	ServiceType     string
	MessageID       string
	SourceAddrTon   int
	SourceAddrNpi   int
	SourceAddr      string
	DestAddrTon     int
	DestAddrNpi     int
	DestinationAddr string
}

// CommandID implements pdu.PDU interface.
func (p CancelSm) CommandID() CommandID {
	return CancelSmID
}

// Response creates new CancelSmResp.
func (p CancelSm) Response() *CancelSmResp {
	return &CancelSmResp{}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p CancelSm) MarshalBinary() ([]byte, error) {
	var out []byte
	var err error
	if out, err = writeCString(out, p.ServiceType, 6, ServiceTypeFld); err != nil {
		return nil, err
	}
	if out, err = writeCString(out, p.MessageID, 65, MessageIDFld); err != nil {
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
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *CancelSm) UnmarshalBinary(body []byte) error {
	c := newCursor(body)
	s, err := c.readCString(6, ServiceTypeFld)
	if err != nil {
		return err
	}
	p.ServiceType = s
	if s, err = c.readCString(65, MessageIDFld); err != nil {
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
	return nil
}

// CancelSmResp holds the (empty) response to cancel_sm.
type CancelSmResp struct {
}

// CommandID implements pdu.PDU interface.
func (p CancelSmResp) CommandID() CommandID {
	return CancelSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p CancelSmResp) MarshalBinary() ([]byte, error) {
	return nil, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *CancelSmResp) UnmarshalBinary(body []byte) error {
	return nil
}
