package smpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/smpplib/smpp/pdu"
)

// DefaultEnquireLinkInterval is used when SessionConf.EnquireLinkInterval
// is left at its zero value.
const DefaultEnquireLinkInterval = 60 * time.Second

func genSessionID() string {
	return uuid.New().String()
}

// RemoteAddresser is an abstraction to keep Session from depending
// on network connection.
type RemoteAddresser interface {
	RemoteAddr() net.Addr
}

// Deadliner is implemented by byte-streams that support per-read
// deadlines — net.Conn does. The receive loop uses it to race a
// socket read against the enquire_link timer with a deadline set
// before the read, rather than a parallel timer goroutine. A stream
// that doesn't implement it simply never times out an idle read; the
// enquire_link liveness sub-protocol becomes a no-op for it.
type Deadliner interface {
	SetReadDeadline(t time.Time) error
}

type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// SessionConf structured session configuration.
type SessionConf struct {
	// SystemID is used only for logging/String(); the session runtime
	// performs no bind negotiation of its own.
	SystemID string
	ID       string
	Logger   Logger
	// Sequencer issues sequence numbers for this session's outgoing
	// requests. A nil value gets a fresh Sequencer starting at
	// SequenceStart.
	Sequencer Sequencer
	// EnquireLinkInterval governs the receive loop's liveness timer.
	// Zero means DefaultEnquireLinkInterval.
	EnquireLinkInterval time.Duration
	// Handler is invoked by Server for every PDU a server-side session
	// receives. Unused by Session itself.
	Handler Handler
}

// Session is a single bounded byte-stream speaking the SMPP session
// protocol: a non-blocking Send/Respond discipline serialized behind a
// single-slot lock, and a Receive loop that folds the enquire_link
// liveness handshake and graceful unbind into ordinary PDU delivery.
// Receive is not safe for concurrent use by multiple goroutines — the
// session is driven by one reader at a time, per the protocol's
// single-threaded cooperative model. Send and Respond are safe to call
// concurrently from any number of goroutines; the send discipline
// serializes them.
type Session struct {
	conf SessionConf
	rwc  io.ReadWriteCloser
	enc  *Encoder
	dec  *Decoder

	sendSlot chan struct{}

	needsMore          bool
	pendingEnquireLink bool

	mu        sync.Mutex
	doneErr   error
	closeOnce sync.Once
	closed    chan struct{}
}

// NewSession creates a new SMPP session wrapping rwc. The session
// takes ownership of rwc and will Close it during teardown; it does
// not spawn any background goroutine — Receive must be called
// (typically in a loop) by whichever goroutine drives this session's
// traffic.
func NewSession(rwc io.ReadWriteCloser, conf SessionConf) *Session {
	if conf.Logger == nil {
		conf.Logger = DefaultLogger{}
	}
	if conf.EnquireLinkInterval == 0 {
		conf.EnquireLinkInterval = DefaultEnquireLinkInterval
	}
	if conf.ID == "" {
		conf.ID = genSessionID()
	}
	sess := &Session{
		conf:      conf,
		rwc:       rwc,
		enc:       NewEncoder(rwc, conf.Sequencer),
		dec:       NewDecoder(rwc),
		sendSlot:  make(chan struct{}, 1),
		needsMore: true,
		closed:    make(chan struct{}),
	}
	sess.sendSlot <- struct{}{}
	return sess
}

// ID uniquely identifies the session.
func (sess *Session) ID() string {
	return sess.conf.ID
}

// SystemID identifies connected peer, as set in SessionConf.
func (sess *Session) SystemID() string {
	if sess.conf.SystemID != "" {
		return sess.conf.SystemID
	}
	return "-"
}

func (sess *Session) String() string {
	return fmt.Sprintf("(%s:%s)", sess.SystemID(), sess.conf.ID)
}

func (sess *Session) remoteAddr() string {
	if ra, ok := sess.rwc.(RemoteAddresser); ok {
		return ra.RemoteAddr().String()
	}
	return ""
}

// NextLayer returns the underlying byte-stream the session was
// constructed with, for connect/close operations the session itself
// doesn't cover.
func (sess *Session) NextLayer() io.ReadWriteCloser {
	return sess.rwc
}

// NotifyClosed provides a channel that's closed once the session's
// stream has been shut down, whether by Close, by Receive reaching a
// terminal outcome, or by a fatal send error.
func (sess *Session) NotifyClosed() <-chan struct{} {
	return sess.closed
}

func (sess *Session) terminalErr() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.doneErr
}

// terminate records the session's terminal outcome if one isn't
// already recorded (first failure wins), shuts the stream down, and
// returns the error now on file — which may be an earlier one than
// the kind/err passed in, if this session already failed once.
func (sess *Session) terminate(kind ErrorKind, err error) error {
	sess.shutdown()
	sess.mu.Lock()
	if sess.doneErr == nil {
		sess.doneErr = sessionErr(kind, err)
	}
	result := sess.doneErr
	sess.mu.Unlock()
	return result
}

// shutdown idempotently shuts the stream down in both directions, then
// closes it, ignoring errors from either step — diagnostic logging
// aside, a session being torn down has nothing left to report a
// shutdown failure to.
func (sess *Session) shutdown() {
	sess.closeOnce.Do(func() {
		var err error
		if hc, ok := sess.rwc.(halfCloser); ok {
			err = multierr.Append(err, hc.CloseRead())
			err = multierr.Append(err, hc.CloseWrite())
		}
		err = multierr.Append(err, sess.rwc.Close())
		if err != nil {
			sess.conf.Logger.ErrorF("error shutting down session: %s %+v", sess, err)
		}
		sess.conf.Logger.InfoF("session closed: %s", sess)
		close(sess.closed)
	})
}

// Close tears the session's stream down immediately. Safe to call
// more than once, and safe to call after Receive has already observed
// a terminal outcome. Subsequent Send/Respond/Receive calls fail with
// a KindIoError SessionError.
func (sess *Session) Close() error {
	sess.mu.Lock()
	if sess.doneErr == nil {
		sess.doneErr = sessionErr(KindIoError, errors.New("smpp: session closed"))
	}
	sess.mu.Unlock()
	sess.shutdown()
	return nil
}

func (sess *Session) acquireSendSlot(ctx context.Context) error {
	if err := sess.terminalErr(); err != nil {
		return err
	}
	select {
	case <-sess.sendSlot:
		return nil
	case <-ctx.Done():
		return sessionErr(KindCancelled, ctx.Err())
	case <-sess.closed:
		if err := sess.terminalErr(); err != nil {
			return err
		}
		return sessionErr(KindIoError, errors.New("smpp: session closed"))
	}
}

func (sess *Session) releaseSendSlot() {
	select {
	case sess.sendSlot <- struct{}{}:
	default:
	}
}

// handleEncodeErr maps an Encoder.Encode failure to the right
// SessionError, tearing the session down for anything that isn't a
// pure serialization failure.
func (sess *Session) handleEncodeErr(err error) error {
	var ef *encodeFailure
	if errors.As(err, &ef) {
		sess.conf.Logger.ErrorF("serialization failed: %s %+v", sess, ef.err)
		return sessionErr(KindSerializationFailed, ef.err)
	}
	return sess.terminate(KindIoError, err)
}

// Send assigns req a fresh sequence_number and writes it to the
// peer, returning that sequence_number immediately — it does not wait
// for any response. Concurrent calls from multiple goroutines are
// serialized through the session's single send slot, with sequence
// assignment happening inside that critical section so wire order
// matches assignment order.
func (sess *Session) Send(ctx context.Context, req pdu.PDU) (uint32, error) {
	if req == nil {
		return 0, sessionErr(KindSerializationFailed, errors.New("smpp: sending nil pdu"))
	}
	if err := sess.acquireSendSlot(ctx); err != nil {
		return 0, err
	}
	defer sess.releaseSendSlot()
	seq, err := sess.enc.Encode(req)
	if err != nil {
		return 0, sess.handleEncodeErr(err)
	}
	sess.conf.Logger.InfoF("sent request: %s %s %+v", sess, req.CommandID(), req)
	return seq, nil
}

// Respond writes resp to the peer carrying the given sequence_number
// (typically echoing the request it answers) and status. Subject to
// the same send discipline as Send.
func (sess *Session) Respond(ctx context.Context, resp pdu.PDU, seq uint32, status pdu.Status) error {
	if resp == nil {
		return sessionErr(KindSerializationFailed, errors.New("smpp: responding with nil pdu"))
	}
	if err := sess.acquireSendSlot(ctx); err != nil {
		return err
	}
	defer sess.releaseSendSlot()
	if _, err := sess.enc.Encode(resp, EncodeStatus(status), EncodeSeq(seq)); err != nil {
		return sess.handleEncodeErr(err)
	}
	sess.conf.Logger.InfoF("sent response: %s %s %+v", sess, resp.CommandID(), resp)
	return nil
}

// SendUnbind sends an unbind request and returns its sequence_number.
// It does not wait for unbind_resp; pair it with a Receive loop (see
// Unbind) to observe the session's graceful teardown.
func (sess *Session) SendUnbind(ctx context.Context) (uint32, error) {
	return sess.Send(ctx, &pdu.Unbind{})
}

func (sess *Session) setReadDeadline(t time.Time) {
	if dl, ok := sess.rwc.(Deadliner); ok {
		dl.SetReadDeadline(t)
	}
}

// readRace performs the receive loop's single read-suspension point: a
// socket read armed with a deadline at enquire_link_interval, the Go
// rendition of racing the read against an enquire_link timer without a
// parallel timer goroutine. A deadline expiry is reported as
// (timedOut=true, nil); any other read error is returned as-is. If ctx
// is cancelled while the read is outstanding, the deadline is forced
// to the present to unblock it and a KindCancelled SessionError is
// returned instead.
func (sess *Session) readRace(ctx context.Context) (timedOut bool, err error) {
	sess.setReadDeadline(time.Now().Add(sess.conf.EnquireLinkInterval))
	defer sess.setReadDeadline(time.Time{})

	done := make(chan struct{})
	cancelled := make(chan struct{}, 1)
	go func() {
		select {
		case <-ctx.Done():
			sess.setReadDeadline(time.Now())
			select {
			case cancelled <- struct{}{}:
			default:
			}
		case <-done:
		}
	}()

	_, rerr := sess.dec.ReadMore()
	close(done)
	if rerr != nil {
		if isTimeout(rerr) {
			select {
			case <-cancelled:
				return false, sessionErr(KindCancelled, ctx.Err())
			default:
				return true, nil
			}
		}
		return false, rerr
	}
	return false, nil
}

// Receive blocks until the next request or response PDU arrives from
// the peer. It transparently replies to enquire_link (and consumes
// enquire_link_resp) to keep the connection alive, and drives the
// enquire_link liveness sub-protocol itself: if no bytes arrive within
// two consecutive EnquireLinkInterval windows, it sends unbind, tears
// the session down, and fails with KindEnquireLinkTimeout. Observing
// unbind or unbind_resp from the peer replies as appropriate, tears
// the session down, and fails with KindUnbinded. Receive is not safe
// for concurrent use by more than one goroutine on the same session.
func (sess *Session) Receive(ctx context.Context) (pdu.PDU, uint32, pdu.Status, error) {
	if err := sess.terminalErr(); err != nil {
		return nil, 0, 0, err
	}
	needsPost := true
	for {
		if sess.needsMore {
			timedOut, rerr := sess.readRace(ctx)
			needsPost = false
			if rerr != nil {
				var serr *SessionError
				if errors.As(rerr, &serr) && serr.Kind == KindCancelled {
					return nil, 0, 0, serr
				}
				return nil, 0, 0, sess.terminate(KindIoError, rerr)
			}
			sess.needsMore = false
			if !timedOut {
				sess.pendingEnquireLink = false
			} else {
				if sess.pendingEnquireLink {
					if _, err := sess.SendUnbind(ctx); err != nil {
						sess.conf.Logger.ErrorF("sending unbind on enquire_link timeout: %s %+v", sess, err)
					}
					return nil, 0, 0, sess.terminate(KindEnquireLinkTimeout, nil)
				}
				sess.pendingEnquireLink = true
				if _, err := sess.Send(ctx, &pdu.EnquireLink{}); err != nil {
					return nil, 0, 0, err
				}
			}
		}

		if sess.dec.Buffered() < pdu.HeaderLen {
			sess.needsMore = true
			continue
		}
		hdr, p, ok, err := sess.dec.DecodeBuffered()
		if err != nil {
			return nil, 0, 0, sess.terminate(KindIoError, err)
		}
		if !ok {
			sess.needsMore = true
			continue
		}

		switch hdr.CommandID {
		case pdu.EnquireLinkID:
			if err := sess.Respond(ctx, &pdu.EnquireLinkResp{}, hdr.Sequence, pdu.StatusOK); err != nil {
				return nil, 0, 0, err
			}
			continue
		case pdu.EnquireLinkRespID:
			continue
		case pdu.UnbindID:
			respErr := sess.Respond(ctx, &pdu.UnbindResp{}, hdr.Sequence, pdu.StatusOK)
			if respErr != nil {
				return nil, 0, 0, respErr
			}
			return nil, 0, 0, sess.terminate(KindUnbinded, nil)
		case pdu.UnbindRespID:
			return nil, 0, 0, sess.terminate(KindUnbinded, nil)
		default:
			if needsPost {
				runtime.Gosched()
			}
			return p, hdr.Sequence, hdr.Status, nil
		}
	}
}

// StatusError implements error interface for SMPP status errors.
type StatusError struct {
	msg    string
	status pdu.Status
}

// Error implements error interface.
func (se StatusError) Error() string {
	return fmt.Sprintf("%s '0x%X'", se.msg, int(se.status))
}

// Status returns PDU status code of the error.
func (se StatusError) Status() pdu.Status {
	return se.status
}

// StatusToError describes a PDU's command_status as an error, or nil
// for StatusOK. Callers inspect the status themselves since Receive no
// longer correlates responses to the request that prompted them.
func StatusToError(status pdu.Status) error {
	switch status {
	case pdu.StatusOK:
		return nil
	case pdu.StatusInvMsgLen:
		return StatusError{"Message Length is invalid", pdu.StatusInvMsgLen}
	case pdu.StatusInvCmdLen:
		return StatusError{"Command Length is invalid", pdu.StatusInvCmdLen}
	case pdu.StatusInvCmdID:
		return StatusError{"Invalid Command ID", pdu.StatusInvCmdID}
	case pdu.StatusInvBnd:
		return StatusError{"Incorrect BIND Status for given command", pdu.StatusInvBnd}
	case pdu.StatusAlyBnd:
		return StatusError{"ESME Already in Bound State", pdu.StatusAlyBnd}
	case pdu.StatusInvPrtFlg:
		return StatusError{"Invalid Priority Flag", pdu.StatusInvPrtFlg}
	case pdu.StatusInvRegDlvFlg:
		return StatusError{"Invalid Registered Delivery Flag", pdu.StatusInvRegDlvFlg}
	case pdu.StatusSysErr:
		return StatusError{"System Error", pdu.StatusSysErr}
	case pdu.StatusInvSrcAdr:
		return StatusError{"Invalid Source Address", pdu.StatusInvSrcAdr}
	case pdu.StatusInvDstAdr:
		return StatusError{"Invalid Destination Address", pdu.StatusInvDstAdr}
	case pdu.StatusInvMsgID:
		return StatusError{"Message ID is invalid", pdu.StatusInvMsgID}
	case pdu.StatusBindFail:
		return StatusError{"Bind Failed", pdu.StatusBindFail}
	case pdu.StatusInvPaswd:
		return StatusError{"Invalid Password", pdu.StatusInvPaswd}
	case pdu.StatusInvSysID:
		return StatusError{"Invalid System ID", pdu.StatusInvSysID}
	case pdu.StatusCancelFail:
		return StatusError{"Cancel SM Failed", pdu.StatusCancelFail}
	case pdu.StatusReplaceFail:
		return StatusError{"Replace SM Failed", pdu.StatusReplaceFail}
	case pdu.StatusMsgQFul:
		return StatusError{"Message Queue Full", pdu.StatusMsgQFul}
	case pdu.StatusInvSerTyp:
		return StatusError{"Invalid Service Type", pdu.StatusInvSerTyp}
	case pdu.StatusInvNumDe:
		return StatusError{"Invalid number of destinations", pdu.StatusInvNumDe}
	case pdu.StatusInvDLName:
		return StatusError{"Invalid Distribution List name", pdu.StatusInvDLName}
	case pdu.StatusInvDestFlag:
		return StatusError{"Destination flag (submit_multi)", pdu.StatusInvDestFlag}
	case pdu.StatusInvSubRep:
		return StatusError{"Invalid ‘submit with replace’ request", pdu.StatusInvSubRep}
	case pdu.StatusInvEsmClass:
		return StatusError{"Invalid esm_class field data", pdu.StatusInvEsmClass}
	case pdu.StatusCntSubDL:
		return StatusError{"Cannot Submit to Distribution List", pdu.StatusCntSubDL}
	case pdu.StatusSubmitFail:
		return StatusError{"submit_sm or submit_multi failed", pdu.StatusSubmitFail}
	case pdu.StatusInvSrcTON:
		return StatusError{"Invalid Source address TON", pdu.StatusInvSrcTON}
	case pdu.StatusInvSrcNPI:
		return StatusError{"Invalid Source address NPI", pdu.StatusInvSrcNPI}
	case pdu.StatusInvDstTON:
		return StatusError{"Invalid Destination address TON", pdu.StatusInvDstTON}
	case pdu.StatusInvDstNPI:
		return StatusError{"Invalid Destination address NPI", pdu.StatusInvDstNPI}
	case pdu.StatusInvSysTyp:
		return StatusError{"Invalid system_type field", pdu.StatusInvSysTyp}
	case pdu.StatusInvRepFlag:
		return StatusError{"Invalid replace_if_present flag", pdu.StatusInvRepFlag}
	case pdu.StatusInvNumMsgs:
		return StatusError{"Invalid number of messages", pdu.StatusInvNumMsgs}
	case pdu.StatusThrottled:
		return StatusError{"Throttling error (ESME has exceeded allowed message limits)", pdu.StatusThrottled}
	case pdu.StatusInvSched:
		return StatusError{"Invalid Scheduled Delivery Time", pdu.StatusInvSched}
	case pdu.StatusInvExpiry:
		return StatusError{"Invalid message Expiry time", pdu.StatusInvExpiry}
	case pdu.StatusInvDftMsgID:
		return StatusError{"Predefined Message Invalid or Not Found", pdu.StatusInvDftMsgID}
	case pdu.StatusTempAppErr:
		return StatusError{"ESME Receiver Temporary App Error Code", pdu.StatusTempAppErr}
	case pdu.StatusPermAppErr:
		return StatusError{"ESME Receiver Permanent App Error Code", pdu.StatusPermAppErr}
	case pdu.StatusRejeAppErr:
		return StatusError{"ESME Receiver Reject Message Error Code", pdu.StatusRejeAppErr}
	case pdu.StatusQueryFail:
		return StatusError{"query_sm request failed", pdu.StatusQueryFail}
	case pdu.StatusInvOptParStream:
		return StatusError{"Error in the optional part of the PDU Body.", pdu.StatusInvOptParStream}
	case pdu.StatusOptParNotAllwd:
		return StatusError{"Optional Parameter not allowed", pdu.StatusOptParNotAllwd}
	case pdu.StatusInvParLen:
		return StatusError{"Invalid Parameter Length.", pdu.StatusInvParLen}
	case pdu.StatusMissingOptParam:
		return StatusError{"Expected Optional Parameter missing", pdu.StatusMissingOptParam}
	case pdu.StatusInvOptParamVal:
		return StatusError{"Invalid Optional Parameter Value", pdu.StatusInvOptParamVal}
	case pdu.StatusDeliveryFailure:
		return StatusError{"Delivery Failure", pdu.StatusDeliveryFailure}
	case pdu.StatusUnknownErr:
		return StatusError{"Unknown Error", pdu.StatusUnknownErr}
	}
	return StatusError{"Unknown Status", status}
}
