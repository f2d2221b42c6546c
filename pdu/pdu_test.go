package pdu

import (
	"bytes"
	"encoding/hex"
	"reflect"
	"strings"
	"testing"
)

var pduTT = []struct {
	desc   string
	hexStr string
	pdu    PDU
	err    bool
}{
	{
		"valid submit_sm pdu",
		"00|00|00|7465737400|00|00|746573743200|00|00|00|00|00|00|00|00|00|03|6d7367",
		&SubmitSm{
			SourceAddr:      "test",
			DestinationAddr: "test2",
			ShortMessage:    "msg",
		},
		false,
	},
	{
		"valid submit_sm with long message",
		"00010161736466000101333831363331323334353400000001000000000100f76161736466617364666173646661736466206173646661736466617364666173646661207364666173642066612073646620617364206661207364666173642066612064666173646661736466617364666173646620617364666173646661736466617364666120736466617364206661207364662061736420666120736466617364206661206466617364666173646661736466617364666173646661736431313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313102040002006f",
		&SubmitSm{
			SourceAddrTon:   0x01,
			SourceAddrNpi:   0x01,
			SourceAddr:      "asdf",
			DestAddrTon:     0x01,
			DestAddrNpi:     0x01,
			DestinationAddr: "38163123454",
			PriorityFlag:    0x01,
			DataCoding:      0x01,
			ShortMessage:    "aasdfasdfasdfasdf asdfasdfasdfasdfa sdfasd fa sdf asd fa sdfasd fa dfasdfasdfasdfasdf asdfasdfasdfasdfa sdfasd fa sdf asd fa sdfasd fa dfasdfasdfasdfasdfasdfasd111111111111111111111111111111111111111111111111111111111111111111111111111111111111111",
			Options:         NewOptions().SetUserMessageReference(0x6F),
		},
		false,
	},
	{
		"valid deliver_sm with long message",
		"00010161736466000101333831363331323334353400000001000000000100f76161736466617364666173646661736466206173646661736466617364666173646661207364666173642066612073646620617364206661207364666173642066612064666173646661736466617364666173646620617364666173646661736466617364666120736466617364206661207364662061736420666120736466617364206661206466617364666173646661736466617364666173646661736431313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313131313102040002006f",
		&DeliverSm{
			SourceAddrTon:   0x01,
			SourceAddrNpi:   0x01,
			SourceAddr:      "asdf",
			DestAddrTon:     0x01,
			DestAddrNpi:     0x01,
			DestinationAddr: "38163123454",
			PriorityFlag:    0x01,
			DataCoding:      0x01,
			ShortMessage:    "aasdfasdfasdfasdf asdfasdfasdfasdfa sdfasd fa sdf asd fa sdfasd fa dfasdfasdfasdfasdf asdfasdfasdfasdfa sdfasd fa sdf asd fa sdfasd fa dfasdfasdfasdfasdfasdfasd111111111111111111111111111111111111111111111111111111111111111111111111111111111111111",
			Options:         NewOptions().SetUserMessageReference(0x6F),
		},
		false,
	},
	{
		"valid bind_trx pdu",
		"7465737400|746573743200|00|00|01|01|00",
		&BindTRx{
			SystemID: "test",
			Password: "test2",
			AddrTon:  1,
			AddrNpi:  1,
		},
		false,
	},
	{
		"valid query_sm pdu",
		"7465737400|01|01|6173646600",
		&QuerySm{
			MessageID:     "test",
			SourceAddrTon: 0x01,
			SourceAddrNpi: 0x01,
			SourceAddr:    "asdf",
		},
		false,
	},
	{
		"valid empty unbind pdu",
		"",
		&Unbind{},
		false,
	},
	{
		"valid bind_trx_resp pdu",
		"7465737400|0210|0001|34",
		&BindTRxResp{
			SystemID: "test",
			Options:  NewOptions().SetScInterfaceVersion(0x34),
		},
		false,
	},
	{
		"valid outbind pdu",
		"7465737400|7061737300",
		&Outbind{
			SystemID: "test",
			Password: "pass",
		},
		false,
	},
	{
		"valid cancel_sm pdu",
		"00|7465737400|01|01|6173646600|02|02|6473746400",
		&CancelSm{
			MessageID:       "test",
			SourceAddrTon:   0x01,
			SourceAddrNpi:   0x01,
			SourceAddr:      "asdf",
			DestAddrTon:     0x02,
			DestAddrNpi:     0x02,
			DestinationAddr: "dstd",
		},
		false,
	},
	{
		"valid cancel_sm_resp pdu",
		"",
		&CancelSmResp{},
		false,
	},
	{
		"valid replace_sm_resp pdu",
		"",
		&ReplaceSmResp{},
		false,
	},
	{
		"valid alert_notification pdu",
		"01|01|6173646600|02|02|6473746400",
		&AlertNotification{
			SourceAddrTon: 0x01,
			SourceAddrNpi: 0x01,
			SourceAddr:    "asdf",
			EsmeAddrTon:   0x02,
			EsmeAddrNpi:   0x02,
			EsmeAddr:      "dstd",
		},
		false,
	},
	{
		"valid data_sm_resp pdu",
		"7465737400",
		&DataSmResp{
			MessageID: "test",
		},
		false,
	},
	// Always append new cases to avoid messing up Marshal/Unmarshal tests which
	// rely on indexes in this table.
}

func toHexStr(s string) string {
	return strings.Replace(s, "|", "", -1)
}

func TestMarshalBinary(t *testing.T) {
	for _, row := range pduTT {
		t.Run(row.desc, func(t *testing.T) {
			b, err := row.pdu.MarshalBinary()
			if err != nil {
				if !row.err {
					t.Fatalf("unexpected error %s", err)
				}
				return
			}
			written := hex.EncodeToString(b)
			if written != toHexStr(row.hexStr) {
				t.Errorf("MarshalBinary() => %q\nExpected: %q\nErr: %v", written, toHexStr(row.hexStr), err)
			}
		})
	}
}

func TestUnmarshalBinary(t *testing.T) {
	for _, row := range pduTT {
		t.Run(row.desc, func(t *testing.T) {
			data, _ := hex.DecodeString(toHexStr(row.hexStr))
			p := reflect.New(reflect.TypeOf(row.pdu).Elem()).Interface().(PDU)
			err := p.UnmarshalBinary(data)
			if err != nil {
				if !row.err {
					t.Fatalf("unexpected error %s", err)
				}
				return
			}
			if !reflect.DeepEqual(p, row.pdu) {
				t.Errorf("UnmarshalBinary(p) => \n%+v\nExpected: \n%+v", p, row.pdu)
			}
		})
	}
}

func BenchmarkSubmitSm_MarshalBinary(b *testing.B) {
	b.SetBytes(285)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bin, err := pduTT[1].pdu.MarshalBinary()
		if err != nil {
			b.Fatalf("error with marshaling %v", err)
		}
		_ = bin
	}
}

func BenchmarkSubmitSm_UnmarshalBinary(b *testing.B) {
	in, _ := hex.DecodeString(toHexStr(pduTT[1].hexStr))
	b.SetBytes(int64(len(in)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pdu := &SubmitSm{}
		err := pdu.UnmarshalBinary(in)
		if err != nil {
			b.Fatalf("error with unmarshaling %v", err)
		}
		_ = pdu
	}
}

func TestSeparateUDH(t *testing.T) {
	udhtest, _ := hex.DecodeString("0B0504158200000003AA0301")
	b, _ := hex.DecodeString("0B0504158200000003AA030174657374")
	udh, content, err := SeparateUDH(b)
	if err != nil {
		t.Fatalf("separate udh %v", err)
	}
	if !bytes.Equal(udh, udhtest) {
		t.Errorf("separate udh got %X expected %X", udh, udhtest)
	}
	if string(content) != "test" {
		t.Errorf("separate udh got %X expected %X", content, "test")
	}
}

func TestSubmitMultiRoundTrip(t *testing.T) {
	p := &SubmitMulti{
		SourceAddr: "asdf",
		DestAddresses: []DestAddress{
			{DestFlag: 1, Ton: 1, Npi: 1, DestinationAddr: "dest1"},
			{DestFlag: 2, DLName: "list1"},
		},
		ShortMessage: "msg",
	}
	b, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error %v", err)
	}
	got := &SubmitMulti{}
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary() error %v", err)
	}
	if !reflect.DeepEqual(p, got) {
		t.Errorf("round trip mismatch\n%+v\nexpected\n%+v", got, p)
	}
}

func TestSubmitMultiRespRoundTrip(t *testing.T) {
	p := &SubmitMultiResp{
		MessageID: "test",
		UnsuccessSmes: []UnsuccessSme{
			{Ton: 1, Npi: 1, DestinationAddr: "dest1", ErrorStatusCode: 0x0000000B},
		},
	}
	b, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error %v", err)
	}
	got := &SubmitMultiResp{}
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary() error %v", err)
	}
	if !reflect.DeepEqual(p, got) {
		t.Errorf("round trip mismatch\n%+v\nexpected\n%+v", got, p)
	}
}

func TestDataSmRoundTrip(t *testing.T) {
	p := &DataSm{
		ServiceType:     "CMT",
		SourceAddr:      "asdf",
		DestinationAddr: "dstd",
		EsmClass:        EsmClass{Mode: DatagramEsmMode},
		RegisteredDelivery: RegisteredDelivery{
			Receipt: YesDeliveryReceipt,
		},
		Options: NewOptions().SetUserMessageReference(0x01),
	}
	b, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error %v", err)
	}
	got := &DataSm{}
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary() error %v", err)
	}
	if !reflect.DeepEqual(p, got) {
		t.Errorf("round trip mismatch\n%+v\nexpected\n%+v", got, p)
	}
}

func TestParseEsmClassDisjointMasks(t *testing.T) {
	ec := ParseEsmClass(0xFF)
	if ec.Mode != MessagingMode(0x03) || ec.Type != MessageType(0x3C) || ec.Feature != GSMFeature(0xC0) {
		t.Errorf("ParseEsmClass(0xFF) => %+v, components should partition the byte with no overlap", ec)
	}
	if ec.Byte() != 0xFF {
		t.Errorf("EsmClass.Byte() round trip => 0x%02X, expected 0xFF", ec.Byte())
	}
}

func TestParseRegisteredDeliveryDisjointMasks(t *testing.T) {
	rd := ParseRegisteredDelivery(0x1F)
	if rd.Receipt != DeliveryReceiptFlag(0x03) || rd.SMEAck != SMEAckFlag(0x0C) || rd.InterNotification != InterNotificationFlag(0x10) {
		t.Errorf("ParseRegisteredDelivery(0x1F) => %+v, components should partition the byte with no overlap", rd)
	}
	if rd.Byte() != 0x1F {
		t.Errorf("RegisteredDelivery.Byte() round trip => 0x%02X, expected 0x1F", rd.Byte())
	}
}

func TestOptionsOrderedMarshal(t *testing.T) {
	opts := NewOptions()
	opts.SetSarTotalSegments(3)
	opts.SetUserMessageReference(1)
	opts.SetSarMsgRefNum(2)
	b, err := opts.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error %v", err)
	}
	// UserMessageReference (0x0204) < SarMsgRefNum (0x020C) < SarTotalSegments (0x020E).
	tags := []uint16{}
	for i := 0; i+4 <= len(b); {
		tag := uint16(b[i])<<8 | uint16(b[i+1])
		tags = append(tags, tag)
		l := int(b[i+2])<<8 | int(b[i+3])
		i += 4 + l
	}
	for i := 1; i < len(tags); i++ {
		if tags[i-1] >= tags[i] {
			t.Errorf("tags not in ascending order: %v", tags)
		}
	}
}
