// Package pdu implements the SMPP v3.4 wire codec: PDU types, their
// field schemas, the 16-byte header, and the optional-parameter (TLV)
// container. It has no knowledge of sockets, timers, or sessions — see
// the root package for the session runtime layered on top.
package pdu

import (
	"encoding"
	"errors"
)

// PDU defines interface for PDU structures
type PDU interface {
	CommandID() CommandID
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// MessagingMode is the bits 0-1 component of EsmClass.
type MessagingMode uint8

const (
	DefaultEsmMode         MessagingMode = 0x0
	DatagramEsmMode        MessagingMode = 0x1
	ForwardEsmMode         MessagingMode = 0x2
	StoreAndForwardEsmMode MessagingMode = 0x3
)

// MessageType is the bits 2-5 component of EsmClass.
type MessageType uint8

const (
	DefaultEsmType MessageType = 0x00
	DelRecEsmType  MessageType = 0x04
	DelAckEsmType  MessageType = 0x08
	UsrAckEsmType  MessageType = 0x10
	ConAbtEsmType  MessageType = 0x18
	IDNEsmType     MessageType = 0x20
)

// GSMFeature is the bits 6-7 component of EsmClass.
type GSMFeature uint8

const (
	NoEsmFeat          GSMFeature = 0x00
	UDHIEsmFeat        GSMFeature = 0x40
	RepPathEsmFeat     GSMFeature = 0x80
	UDHIRepPathEsmFeat GSMFeature = 0xC0
)

// EsmClass is an enum_flag: a single wire byte decomposed into three
// disjoint bitfield components (messaging mode, message type, GSM
// network feature), per original_source's esm_class.hpp.
type EsmClass struct {
	Mode    MessagingMode
	Type    MessageType
	Feature GSMFeature
}

// Byte converts EsmClass into a single byte for pdu encoding. The three
// components occupy disjoint bit ranges so the encoding is a plain
// bitwise OR.
func (ec EsmClass) Byte() byte {
	return byte(ec.Mode) | byte(ec.Type) | byte(ec.Feature)
}

// ParseEsmClass decomposes a wire byte into its three components.
func ParseEsmClass(b byte) EsmClass {
	return EsmClass{
		Mode:    MessagingMode(b & 0x03),
		Type:    MessageType(b & 0x3C),
		Feature: GSMFeature(b & 0xC0),
	}
}

// DeliveryReceiptFlag is the bits 0-1 component of RegisteredDelivery.
type DeliveryReceiptFlag uint8

const (
	NoDeliveryReceipt   DeliveryReceiptFlag = 0x00
	YesDeliveryReceipt  DeliveryReceiptFlag = 0x01
	FailDeliveryReceipt DeliveryReceiptFlag = 0x02
)

// SMEAckFlag is the bits 2-3 component of RegisteredDelivery.
type SMEAckFlag uint8

const (
	NoSMEAck     SMEAckFlag = 0x00
	YesSMEAck    SMEAckFlag = 0x04
	ManualSMEAck SMEAckFlag = 0x08
	AllSMEAck    SMEAckFlag = 0x0C
)

// InterNotificationFlag is the bit 4 component of RegisteredDelivery.
type InterNotificationFlag uint8

const (
	NoInterNotification  InterNotificationFlag = 0x00
	YesInterNotification InterNotificationFlag = 0x10
)

// RegisteredDelivery is an enum_flag used to request an SMSC delivery
// receipt and/or SME originated acknowledgements. Its three components
// occupy disjoint bit ranges (0-1, 2-3, 4), per
// original_source's registered_delivery.hpp.
type RegisteredDelivery struct {
	Receipt           DeliveryReceiptFlag
	SMEAck            SMEAckFlag
	InterNotification InterNotificationFlag
}

// Byte converts RegisteredDelivery into a single byte for pdu encoding.
func (rd RegisteredDelivery) Byte() byte {
	return byte(rd.Receipt) | byte(rd.SMEAck) | byte(rd.InterNotification)
}

// ParseRegisteredDelivery decomposes a wire byte into its three
// components using disjoint masks (0x03, 0x0C, 0x10).
func ParseRegisteredDelivery(b byte) RegisteredDelivery {
	return RegisteredDelivery{
		Receipt:           DeliveryReceiptFlag(b & 0x03),
		SMEAck:            SMEAckFlag(b & 0x0C),
		InterNotification: InterNotificationFlag(b & 0x10),
	}
}

// NewPDU creates a fresh, zero-valued PDU for the given CommandID. It
// returns nil for an unknown id; the decoder checks KnownCommand first
// and routes unknown ids to the invalid_pdu carrier instead (§9).
func NewPDU(commandID CommandID) PDU {
	switch commandID {
	case GenericNackID:
		return &GenericNack{}
	case BindReceiverID:
		return &BindRx{}
	case BindReceiverRespID:
		return &BindRxResp{}
	case BindTransmitterID:
		return &BindTx{}
	case BindTransmitterRespID:
		return &BindTxResp{}
	case BindTransceiverID:
		return &BindTRx{}
	case BindTransceiverRespID:
		return &BindTRxResp{}
	case EnquireLinkID:
		return &EnquireLink{}
	case EnquireLinkRespID:
		return &EnquireLinkResp{}
	case QuerySmID:
		return &QuerySm{}
	case QuerySmRespID:
		return &QuerySmResp{}
	case SubmitSmID:
		return &SubmitSm{}
	case SubmitSmRespID:
		return &SubmitSmResp{}
	case DeliverSmID:
		return &DeliverSm{}
	case DeliverSmRespID:
		return &DeliverSmResp{}
	case UnbindID:
		return &Unbind{}
	case UnbindRespID:
		return &UnbindResp{}
	case ReplaceSmID:
		return &ReplaceSm{}
	case ReplaceSmRespID:
		return &ReplaceSmResp{}
	case CancelSmID:
		return &CancelSm{}
	case CancelSmRespID:
		return &CancelSmResp{}
	case OutbindID:
		return &Outbind{}
	case SubmitMultiID:
		return &SubmitMulti{}
	case SubmitMultiRespID:
		return &SubmitMultiResp{}
	case AlertNotificationID:
		return &AlertNotification{}
	case DataSmID:
		return &DataSm{}
	case DataSmRespID:
		return &DataSmResp{}
	}
	return nil
}

// KnownCommand reports whether id is one of the registry's 27 known
// command ids (i.e. NewPDU would not return nil).
func KnownCommand(id CommandID) bool {
	return NewPDU(id) != nil
}

// IsRequest returns true if command is request (bit 31 clear).
func IsRequest(id CommandID) bool {
	return uint32(id)&0x80000000 == 0
}

// SystemID extracts system id value from PDU if it has one.
func SystemID(p PDU) string {
	switch v := p.(type) {
	case *BindRx:
		return v.SystemID
	case *BindTx:
		return v.SystemID
	case *BindTRx:
		return v.SystemID
	case *BindRxResp:
		return v.SystemID
	case *BindTxResp:
		return v.SystemID
	case *BindTRxResp:
		return v.SystemID
	case *Outbind:
		return v.SystemID
	}
	return ""
}

// SeparateUDH takes input bytes and separates them into UDH header and content.
func SeparateUDH(c []byte) ([]byte, []byte, error) {
	if len(c) == 0 {
		return nil, c, errors.New("smpp: invalid udh length")
	}
	l := int(c[0])
	if l >= len(c) {
		return nil, c, errors.New("smpp: invalid udh length value")
	}
	return c[:l+1], c[l+1:], nil
}
