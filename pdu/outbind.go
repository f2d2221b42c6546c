package pdu

// Outbind is sent by an SMSC to request that an ESME bind as a
// receiver/transceiver, e.g. when the SMSC has queued messages for a
// system_id it knows about but currently has no open session for.
// It carries no response.
type Outbind struct {
	SystemID string
	Password string
}

// CommandID implements pdu.PDU interface.
func (p Outbind) CommandID() CommandID {
	return OutbindID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p Outbind) MarshalBinary() ([]byte, error) {
	var out []byte
	var err error
	if out, err = writeCString(out, p.SystemID, 16, SystemIDFld); err != nil {
		return nil, err
	}
	if out, err = writeCString(out, p.Password, 9, PasswordFld); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *Outbind) UnmarshalBinary(body []byte) error {
	c := newCursor(body)
	s, err := c.readCString(16, SystemIDFld)
	if err != nil {
		return err
	}
	p.SystemID = s
	if s, err = c.readCString(9, PasswordFld); err != nil {
		return err
	}
	p.Password = s
	return nil
}
