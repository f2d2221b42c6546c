// Package smpp implements SMPP protocol v3.4.
//
// It allows easier creation of SMPP clients and servers by providing utilities for PDU and session handling.
// In order to do any kind of interaction you first need to create an SMPP [Session](https://godoc.org/github.com/smpplib/smpp#Session). Session is the main carrier of the protocol and enforcer of the specification rules.
//
// Naked session can be created with:
//
//     // You must provide already established connection and configuration struct.
//     Sess := smpp.NewSession(conn, conf)
//
// But it's much more convenient to use helpers that would do the binding with the remote SMSC and return you session prepared for sending:
//
//     // Bind with remote server by providing config structs.
//     Sess, err := smpp.BindTRx(sessConf, bindConf)
//
// And once you have the session it can be used for sending PDUs to the bound peer. Send returns as soon as the
// PDU has been written, without waiting for any response — call Receive in a loop to observe responses and
// incoming requests.
//
//     sm := &pdu.SubmitSm{
//         SourceAddr:      "11111111",
//         DestinationAddr: "22222222",
//         ShortMessage:    "Hello from SMPP!",
//     }
//     seq, err := Sess.Send(ctx, sm)
//     resp, respSeq, status, err := Sess.Receive(ctx)
//
// Session that is no longer used must be closed:
//
//     Sess.Close()
//
// If you want to handle incoming requests to a server-side session specify a Handler in session configuration
// when creating the Server, similarly to HTTPHandler from the _net/http_ package:
//
//     conf := smpp.SessionConf{
//         Handler: smpp.HandlerFunc(func(sess *smpp.Session, req pdu.PDU, seq uint32, status pdu.Status) {
//             switch req.(type) {
//             case *pdu.SubmitSm:
//                 sess.Respond(context.Background(), &pdu.SubmitSmResp{}, seq, pdu.StatusOK)
//             }
//         }),
//     }
package smpp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/smpplib/smpp/pdu"
)

const (
	// Version of the supported SMPP Protocol. Only supporting 3.4 for now.
	Version = 0x34
	// SequenceStart is the starting reference for sequence number.
	SequenceStart = 0x00000001
	// SequenceEnd s sequence number upper boundary.
	SequenceEnd = 0x7FFFFFFF
)

// BindConf is the configuration for binding to smpp servers.
type BindConf struct {
	// Bind will be attempted to this addr.
	Addr string
	// Mandatory fields for binding PDU.
	SystemID   string
	Password   string
	SystemType string
	AddrTon    int
	AddrNpi    int
	AddrRange  string
	// Timeout bounds both the TCP dial and the wait for the bind
	// response. Zero means 5 seconds.
	Timeout time.Duration
}

// bind dials bc.Addr, sends req, and waits for its bind_resp — replying
// to any enquire_link that arrives first, per the session's ordinary
// receive discipline.
func bind(req pdu.PDU, sc SessionConf, bc BindConf) (*Session, error) {
	timeout := bc.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	conn, err := net.DialTimeout("tcp", bc.Addr, timeout)
	if err != nil {
		return nil, err
	}
	sess := NewSession(conn, sc)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := sess.Send(ctx, req); err != nil {
		sess.Close()
		return nil, err
	}
	for {
		resp, _, status, err := sess.Receive(ctx)
		if err != nil {
			sess.Close()
			return nil, err
		}
		switch p := resp.(type) {
		case *pdu.InvalidPDU:
			sess.Close()
			return nil, fmt.Errorf("smpp: invalid bind response: %s", p.Reason)
		default:
			if err := StatusToError(status); err != nil {
				sess.Close()
				return nil, err
			}
			if id := p.CommandID(); id == pdu.BindTransmitterRespID || id == pdu.BindReceiverRespID || id == pdu.BindTransceiverRespID {
				sess.conf.SystemID = pdu.SystemID(p)
				return sess, nil
			}
		}
	}
}

// BindTx binds transmitter session.
func BindTx(sc SessionConf, bc BindConf) (*Session, error) {
	return bind(&pdu.BindTx{
		SystemID:         bc.SystemID,
		Password:         bc.Password,
		SystemType:       bc.SystemType,
		InterfaceVersion: Version,
		AddrTon:          bc.AddrTon,
		AddrNpi:          bc.AddrNpi,
		AddressRange:     bc.AddrRange,
	}, sc, bc)
}

// BindRx binds receiver session.
func BindRx(sc SessionConf, bc BindConf) (*Session, error) {
	return bind(&pdu.BindRx{
		SystemID:         bc.SystemID,
		Password:         bc.Password,
		SystemType:       bc.SystemType,
		InterfaceVersion: Version,
		AddrTon:          bc.AddrTon,
		AddrNpi:          bc.AddrNpi,
		AddressRange:     bc.AddrRange,
	}, sc, bc)
}

// BindTRx binds transreceiver session.
func BindTRx(sc SessionConf, bc BindConf) (*Session, error) {
	return bind(&pdu.BindTRx{
		SystemID:         bc.SystemID,
		Password:         bc.Password,
		SystemType:       bc.SystemType,
		InterfaceVersion: Version,
		AddrTon:          bc.AddrTon,
		AddrNpi:          bc.AddrNpi,
		AddressRange:     bc.AddrRange,
	}, sc, bc)
}

// Unbind performs a graceful shutdown of sess as seen from the caller's
// side: it sends unbind and then drains Receive until the session
// reports KindUnbinded (the peer's unbind_resp, or the peer initiating
// its own unbind first). The session is closed either way.
func Unbind(ctx context.Context, sess *Session) error {
	if _, err := sess.SendUnbind(ctx); err != nil {
		sess.Close()
		return err
	}
	for {
		_, _, _, err := sess.Receive(ctx)
		if err == nil {
			continue
		}
		var serr *SessionError
		if errors.As(err, &serr) && serr.Kind == KindUnbinded {
			return nil
		}
		sess.Close()
		return err
	}
}
