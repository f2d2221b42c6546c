package pdu

// AlertNotification is sent by an SMSC to an ESME bound as a receiver
// or transceiver to advise that a mobile subscriber has become
// available after being unreachable (e.g. ms_availability tracking).
// It carries no response.
type AlertNotification struct {
	SourceAddrTon int
	SourceAddrNpi int
	SourceAddr    string
	EsmeAddrTon   int
	EsmeAddrNpi   int
	EsmeAddr      string
	Options       *Options
}

// CommandID implements pdu.PDU interface.
func (p AlertNotification) CommandID() CommandID {
	return AlertNotificationID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p AlertNotification) MarshalBinary() ([]byte, error) {
	var out []byte
	var err error
	out = writeUint8(out, uint8(p.SourceAddrTon))
	out = writeUint8(out, uint8(p.SourceAddrNpi))
	if out, err = writeCString(out, p.SourceAddr, 65, SourceAddrFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, uint8(p.EsmeAddrTon))
	out = writeUint8(out, uint8(p.EsmeAddrNpi))
	if out, err = writeCString(out, p.EsmeAddr, 65, EsmeAddrFld); err != nil {
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
func (p *AlertNotification) UnmarshalBinary(body []byte) error {
	c := newCursor(body)
	b, err := c.readUint8(SourceAddrTonFld)
	if err != nil {
		return err
	}
	p.SourceAddrTon = int(b)
	if b, err = c.readUint8(SourceAddrNpiFld); err != nil {
		return err
	}
	p.SourceAddrNpi = int(b)
	s, err := c.readCString(65, SourceAddrFld)
	if err != nil {
		return err
	}
	p.SourceAddr = s
	if b, err = c.readUint8(EsmeAddrTonFld); err != nil {
		return err
	}
	p.EsmeAddrTon = int(b)
	if b, err = c.readUint8(EsmeAddrNpiFld); err != nil {
		return err
	}
	p.EsmeAddrNpi = int(b)
	if s, err = c.readCString(65, EsmeAddrFld); err != nil {
		return err
	}
	p.EsmeAddr = s
	if c.len() == 0 {
		return nil
	}
	if p.Options == nil {
		p.Options = NewOptions()
	}
	return p.Options.UnmarshalBinary(c.remaining())
}
