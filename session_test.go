package smpp_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smpplib/smpp"
	"github.com/smpplib/smpp/mock"
	"github.com/smpplib/smpp/pdu"
)

type testSequencer struct {
	seq  uint32
	skip bool
}

func (ts *testSequencer) Next() uint32 {
	if !ts.skip {
		ts.seq++
	} else {
		ts.skip = false
	}
	return ts.seq
}

func (ts *testSequencer) skipNext() {
	ts.skip = true
}

type testEncoder struct {
	buf *bytes.Buffer
	enc *smpp.Encoder
	seq *testSequencer
}

func newTestEncoder(i int) *testEncoder {
	buf := bytes.NewBuffer(nil)
	seq := &testSequencer{seq: uint32(i)}
	return &testEncoder{
		buf: buf,
		seq: seq,
		enc: smpp.NewEncoder(buf, seq),
	}
}

// Encode by incrementing counter.
func (te *testEncoder) i(p pdu.PDU, status ...pdu.Status) []byte {
	te.buf.Reset()
	st := pdu.StatusOK
	if len(status) > 0 {
		st = status[0]
	}
	_, err := te.enc.Encode(p, smpp.EncodeStatus(st))
	if err != nil {
		panic(err.Error())
	}
	out := make([]byte, te.buf.Len())
	copy(out, te.buf.Bytes())
	return out
}

// Encode by skipping increment.
func (te *testEncoder) s(p pdu.PDU, status ...pdu.Status) []byte {
	te.buf.Reset()
	st := pdu.StatusOK
	if len(status) > 0 {
		st = status[0]
	}
	te.seq.skipNext()
	_, err := te.enc.Encode(p, smpp.EncodeStatus(st))
	if err != nil {
		panic(err.Error())
	}
	out := make([]byte, te.buf.Len())
	copy(out, te.buf.Bytes())
	return out
}

// pair wires two Sessions together over an in-memory net.Pipe, standing
// in for a connected TCP socket: both ends support SetReadDeadline so
// the enquire_link timer races are exercised exactly as they would be
// against a real connection.
func pair(t *testing.T, confA, confB smpp.SessionConf) (*smpp.Session, *smpp.Session) {
	t.Helper()
	a, b := net.Pipe()
	return smpp.NewSession(a, confA), smpp.NewSession(b, confB)
}

func TestBindSubmitUnbindSequenceOrder(t *testing.T) {
	client, server := pair(t, smpp.SessionConf{}, smpp.SessionConf{})
	defer client.Close()
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		for {
			req, seq, _, err := server.Receive(ctx)
			if err != nil {
				return
			}
			switch p := req.(type) {
			case *pdu.BindTRx:
				require.NoError(t, server.Respond(ctx, p.Response("SMSC"), seq, pdu.StatusOK))
			case *pdu.SubmitSm:
				require.NoError(t, server.Respond(ctx, p.Response("id0"), seq, pdu.StatusOK))
			}
		}
	}()

	bindSeq, err := client.Send(ctx, &pdu.BindTRx{SystemID: "ESME", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, uint32(1), bindSeq)

	resp, respSeq, status, err := client.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, bindSeq, respSeq)
	require.Equal(t, pdu.StatusOK, status)
	require.Equal(t, pdu.BindTransceiverRespID, resp.CommandID())

	submitSeq, err := client.Send(ctx, &pdu.SubmitSm{SourceAddr: "1", DestinationAddr: "2", ShortMessage: "hi"})
	require.NoError(t, err)
	require.Equal(t, uint32(2), submitSeq)

	resp, respSeq, status, err = client.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, submitSeq, respSeq)
	require.Equal(t, pdu.StatusOK, status)
	require.Equal(t, pdu.SubmitSmRespID, resp.CommandID())

	unbindSeq, err := client.SendUnbind(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(3), unbindSeq)

	_, _, _, err = client.Receive(ctx)
	require.Error(t, err)
	var serr *smpp.SessionError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, smpp.KindUnbinded, serr.Kind)

	<-serverDone
}

func TestEnquireLinkRoundtripNoError(t *testing.T) {
	confA := smpp.SessionConf{EnquireLinkInterval: 15 * time.Millisecond}
	confB := smpp.SessionConf{EnquireLinkInterval: 15 * time.Millisecond}
	a, b := pair(t, confA, confB)
	defer a.Close()
	defer b.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	// Both sides just keep answering whatever arrives; neither ever
	// sends a data PDU, so only enquire_link traffic flows. Each side
	// reading and replying within the interval should never trip the
	// other's enquire_link timeout.
	errA := make(chan error, 1)
	errB := make(chan error, 1)
	go func() {
		for {
			if _, _, _, err := a.Receive(ctx); err != nil {
				errA <- err
				return
			}
		}
	}()
	go func() {
		for {
			if _, _, _, err := b.Receive(ctx); err != nil {
				errB <- err
				return
			}
		}
	}()

	var gotA, gotB error
	select {
	case gotA = <-errA:
	case <-time.After(time.Second):
		t.Fatal("side A never stopped")
	}
	select {
	case gotB = <-errB:
	case <-time.After(time.Second):
		t.Fatal("side B never stopped")
	}

	for _, err := range []error{gotA, gotB} {
		var serr *smpp.SessionError
		require.True(t, errors.As(err, &serr))
		require.NotEqual(t, smpp.KindEnquireLinkTimeout, serr.Kind, "enquire_link roundtrip should not time out: %v", err)
	}
}

func TestEnquireLinkTimeoutShutsSessionDown(t *testing.T) {
	a, b := net.Pipe()
	sess := smpp.NewSession(a, smpp.SessionConf{EnquireLinkInterval: 10 * time.Millisecond})
	defer sess.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Peer drains whatever the session sends (its own enquire_link
	// probe) but never writes anything back, so two consecutive
	// intervals elapse with no bytes arriving.
	go func() {
		buf := make([]byte, 256)
		for {
			if _, err := b.Read(buf); err != nil {
				return
			}
		}
	}()

	_, _, _, err := sess.Receive(ctx)
	require.Error(t, err)
	var serr *smpp.SessionError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, smpp.KindEnquireLinkTimeout, serr.Kind)

	select {
	case <-sess.NotifyClosed():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("session was not shut down after enquire_link timeout")
	}
}

func TestGracefulUnbindFromPeer(t *testing.T) {
	client, server := pair(t, smpp.SessionConf{}, smpp.SessionConf{})
	defer client.Close()
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clientErr := make(chan error, 1)
	go func() {
		_, _, _, err := client.Receive(ctx)
		clientErr <- err
	}()

	serverErr := make(chan error, 1)
	go func() {
		if _, err := server.SendUnbind(ctx); err != nil {
			serverErr <- err
			return
		}
		// consumes the unbind_resp the client's receive loop replies with.
		_, _, _, err := server.Receive(ctx)
		serverErr <- err
	}()

	err := <-clientErr
	require.Error(t, err)
	var serr *smpp.SessionError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, smpp.KindUnbinded, serr.Kind)

	sErr := <-serverErr
	require.Error(t, sErr) // observing unbind_resp also terminates with KindUnbinded
	var sserr *smpp.SessionError
	require.True(t, errors.As(sErr, &sserr))
	require.Equal(t, smpp.KindUnbinded, sserr.Kind)

	select {
	case <-client.NotifyClosed():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client session was not shut down after peer unbind")
	}
}

func TestConcurrentSendsAreContiguousWithDistinctSequences(t *testing.T) {
	client, server := pair(t, smpp.SessionConf{}, smpp.SessionConf{})
	defer client.Close()
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	const n = 20
	var wg sync.WaitGroup
	seqs := make([]uint32, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// submit_sm (a data PDU) rather than enquire_link: the
			// latter is auto-consumed by the peer's receive loop and
			// never surfaced, which would deadlock this test.
			seq, err := client.Send(ctx, &pdu.SubmitSm{SourceAddr: "src", DestinationAddr: "dst"})
			require.NoError(t, err)
			seqs[i] = seq
		}(i)
	}
	wg.Wait()

	seen := make(map[uint32]bool, n)
	for _, s := range seqs {
		require.False(t, seen[s], "sequence number %d reused", s)
		seen[s] = true
	}

	for i := 0; i < n; i++ {
		_, seq, _, err := server.Receive(ctx)
		require.NoError(t, err)
		require.True(t, seen[seq], "received sequence %d not among those sent", seq)
	}
}

func TestInvalidBodyDoesNotDesyncStream(t *testing.T) {
	e := newTestEncoder(0)
	good := &pdu.SubmitSm{SourceAddr: "good", DestinationAddr: "peer", ShortMessage: "ok"}
	goodResp := good.Response("id1")

	// A submit_sm frame with an honest command_length but a body with
	// no null terminator anywhere: UnmarshalBinary fails on the very
	// first field, but the decoder already knows exactly how many
	// bytes this frame occupies from the header alone.
	body := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	frame := make([]byte, pdu.HeaderLen+len(body))
	pdu.SerializeHeader(frame, uint32(len(frame)), pdu.SubmitSmID, pdu.StatusOK, 7)
	copy(frame[pdu.HeaderLen:], body)

	conn := mock.NewConn().
		ByteRead(frame).NoResp().
		ByteRead(e.i(good)).ByteWrite(e.s(goodResp)).
		Wait(1).
		Closed()
	sess := smpp.NewSession(conn, smpp.SessionConf{})
	defer sess.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, _, _, err := sess.Receive(ctx)
	require.NoError(t, err)
	invalid, ok := resp.(*pdu.InvalidPDU)
	require.True(t, ok, "expected *pdu.InvalidPDU, got %T", resp)
	require.Equal(t, pdu.SubmitSmID, invalid.OriginalCommandID)

	resp, respSeq, _, err := sess.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, pdu.SubmitSmID, resp.CommandID())
	require.NoError(t, sess.Respond(ctx, goodResp, respSeq, pdu.StatusOK))

	require.NoError(t, sess.Close())
	require.Empty(t, conn.Validate())
}

func TestSendSerializationFailureLeavesSessionUsable(t *testing.T) {
	// Sequence numbers are assigned before marshaling, so the failed
	// send still consumes sequence 1; the next successful send gets 2.
	wantFrame := make([]byte, pdu.HeaderLen)
	pdu.SerializeHeader(wantFrame, pdu.HeaderLen, pdu.EnquireLinkID, pdu.StatusOK, 2)
	conn := mock.NewConn().ByteWrite(wantFrame).NoResp()
	sess := smpp.NewSession(conn, smpp.SessionConf{})
	defer sess.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// SourceAddr's wire encoding is capped at 21 bytes; this violates
	// that constraint and fails to marshal.
	_, err := sess.Send(ctx, &pdu.SubmitSm{SourceAddr: strings.Repeat("9", 30)})
	require.Error(t, err)
	var serr *smpp.SessionError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, smpp.KindSerializationFailed, serr.Kind)

	select {
	case <-sess.NotifyClosed():
		t.Fatal("session should not be torn down by a serialization failure")
	default:
	}

	// The session is still usable.
	seq, err := sess.Send(ctx, &pdu.EnquireLink{})
	require.NoError(t, err)
	require.Equal(t, uint32(2), seq)
	require.Empty(t, conn.Validate())
}

func TestTerminalErrorIsSticky(t *testing.T) {
	a, b := net.Pipe()
	sess := smpp.NewSession(a, smpp.SessionConf{EnquireLinkInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		buf := make([]byte, 256)
		for {
			if _, err := b.Read(buf); err != nil {
				return
			}
		}
	}()

	_, _, _, err := sess.Receive(ctx)
	require.Error(t, err)

	_, _, _, err2 := sess.Receive(ctx)
	require.Error(t, err2)
	var serr *smpp.SessionError
	require.True(t, errors.As(err2, &serr))
	require.Equal(t, smpp.KindEnquireLinkTimeout, serr.Kind)

	_, err3 := sess.Send(ctx, &pdu.EnquireLink{})
	require.Error(t, err3)
}

func TestBoundStatusSurfacesAsStatusError(t *testing.T) {
	bindTRx := &pdu.BindTRx{SystemID: "ESME"}
	bindTRxResp := bindTRx.Response("SMSC")
	submitSm := &pdu.SubmitSm{SourceAddr: "source", DestinationAddr: "destination", ShortMessage: "this is the message"}
	submitSmResp := submitSm.Response("id0")
	e := newTestEncoder(0)
	conn := mock.NewConn().
		ByteWrite(e.i(bindTRx)).ByteRead(e.s(bindTRxResp)).
		ByteWrite(e.i(submitSm)).ByteRead(e.s(submitSmResp, pdu.StatusInvDstAdr)).
		Wait(1).
		Closed()
	sess := smpp.NewSession(conn, smpp.SessionConf{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := sess.Send(ctx, bindTRx)
	require.NoError(t, err)
	_, _, status, err := sess.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, smpp.StatusToError(status))

	_, err = sess.Send(ctx, submitSm)
	require.NoError(t, err)
	resp, _, status, err := sess.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, pdu.SubmitSmRespID, resp.CommandID())

	serr := smpp.StatusToError(status)
	require.Error(t, serr)
	se, ok := serr.(smpp.StatusError)
	require.True(t, ok, "expected StatusError type")
	require.Equal(t, "Invalid Destination Address '0xB'", se.Error())

	require.NoError(t, sess.Close())
	require.Empty(t, conn.Validate())
}
