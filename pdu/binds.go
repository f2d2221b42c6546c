package pdu

// BindTx binding pdu in transmitter mode.
type BindTx struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

// CommandID implements pdu.PDU interface.
func (p BindTx) CommandID() CommandID {
	return BindTransmitterID
}

// Response creates new BindTxResp.
func (p BindTx) Response(sysID string) *BindTxResp {
	return &BindTxResp{SystemID: sysID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTx) MarshalBinary() ([]byte, error) {
	return marshalBind(p.SystemID, p.Password, p.SystemType, p.InterfaceVersion, p.AddrTon, p.AddrNpi, p.AddressRange)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTx) UnmarshalBinary(body []byte) error {
	return unmarshalBind(body, &p.SystemID, &p.Password, &p.SystemType, &p.InterfaceVersion, &p.AddrTon, &p.AddrNpi, &p.AddressRange)
}

// BindTxResp bind response.
type BindTxResp struct {
	SystemID string
	Options  *Options
}

// CommandID implements pdu.PDU interface.
func (p BindTxResp) CommandID() CommandID {
	return BindTransmitterRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTxResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.SystemID, p.Options, SystemIDFld)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTxResp) UnmarshalBinary(body []byte) error {
	var err error
	p.SystemID, p.Options, err = cStringOptsRespUnmarshal(body, SystemIDFld)
	return err
}

// BindRx binding pdu in receiver mode.
type BindRx struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

// CommandID implements pdu.PDU interface.
func (p BindRx) CommandID() CommandID {
	return BindReceiverID
}

// Response creates new BindRxResp.
func (p BindRx) Response(sysID string) *BindRxResp {
	return &BindRxResp{SystemID: sysID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindRx) MarshalBinary() ([]byte, error) {
	return marshalBind(p.SystemID, p.Password, p.SystemType, p.InterfaceVersion, p.AddrTon, p.AddrNpi, p.AddressRange)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindRx) UnmarshalBinary(body []byte) error {
	return unmarshalBind(body, &p.SystemID, &p.Password, &p.SystemType, &p.InterfaceVersion, &p.AddrTon, &p.AddrNpi, &p.AddressRange)
}

// BindRxResp bind response.
type BindRxResp struct {
	SystemID string
	Options  *Options
}

// CommandID implements pdu.PDU interface.
func (p BindRxResp) CommandID() CommandID {
	return BindReceiverRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindRxResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.SystemID, p.Options, SystemIDFld)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindRxResp) UnmarshalBinary(body []byte) error {
	var err error
	p.SystemID, p.Options, err = cStringOptsRespUnmarshal(body, SystemIDFld)
	return err
}

// BindTRx binding PDU in transceiver mode.
type BindTRx struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

// CommandID implements pdu.PDU interface.
func (p BindTRx) CommandID() CommandID {
	return BindTransceiverID
}

// Response creates new BindTRxResp.
func (p BindTRx) Response(sysID string) *BindTRxResp {
	return &BindTRxResp{SystemID: sysID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTRx) MarshalBinary() ([]byte, error) {
	return marshalBind(p.SystemID, p.Password, p.SystemType, p.InterfaceVersion, p.AddrTon, p.AddrNpi, p.AddressRange)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTRx) UnmarshalBinary(body []byte) error {
	return unmarshalBind(body, &p.SystemID, &p.Password, &p.SystemType, &p.InterfaceVersion, &p.AddrTon, &p.AddrNpi, &p.AddressRange)
}

// BindTRxResp bind response.
type BindTRxResp struct {
	SystemID string
	Options  *Options
}

// CommandID implements pdu.PDU interface.
func (p BindTRxResp) CommandID() CommandID {
	return BindTransceiverRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTRxResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.SystemID, p.Options, SystemIDFld)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTRxResp) UnmarshalBinary(body []byte) error {
	var err error
	p.SystemID, p.Options, err = cStringOptsRespUnmarshal(body, SystemIDFld)
	return err
}

func marshalBind(systemID, password, systemType string, interfaceVer, addrTon, addrNpi int, addrRange string) ([]byte, error) {
	var out []byte
	var err error
	if out, err = writeCString(out, systemID, 16, SystemIDFld); err != nil {
		return nil, err
	}
	if out, err = writeCString(out, password, 9, PasswordFld); err != nil {
		return nil, err
	}
	if out, err = writeCString(out, systemType, 13, SystemTypeFld); err != nil {
		return nil, err
	}
	out = writeUint8(out, uint8(interfaceVer))
	out = writeUint8(out, uint8(addrTon))
	out = writeUint8(out, uint8(addrNpi))
	if out, err = writeCString(out, addrRange, 41, AddressRangeFld); err != nil {
		return nil, err
	}
	return out, nil
}

func unmarshalBind(body []byte, systemID, password, systemType *string, interfaceVer, addrTon, addrNpi *int, addrRange *string) error {
	c := newCursor(body)
	s, err := c.readCString(16, SystemIDFld)
	if err != nil {
		return err
	}
	*systemID = s
	if s, err = c.readCString(9, PasswordFld); err != nil {
		return err
	}
	*password = s
	if s, err = c.readCString(13, SystemTypeFld); err != nil {
		return err
	}
	*systemType = s
	b, err := c.readUint8(InterfaceVersionFld)
	if err != nil {
		return err
	}
	*interfaceVer = int(b)
	if b, err = c.readUint8(AddrTonFld); err != nil {
		return err
	}
	*addrTon = int(b)
	if b, err = c.readUint8(AddrNpiFld); err != nil {
		return err
	}
	*addrNpi = int(b)
	if s, err = c.readCString(41, AddressRangeFld); err != nil {
		return err
	}
	*addrRange = s
	return nil
}
