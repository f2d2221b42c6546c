package pdu

import (
	"time"

	smpptime "github.com/smpplib/smpp/smpptime"
)

// writeTime renders t per layout into a c_octet_str<17> body (body plus
// trailing NUL); a zero Time renders as an empty string (just the NUL),
// matching SMPP's convention for "immediate"/"no expiry".
func writeTime(layout smpptime.Layout, t time.Time) ([]byte, error) {
	var out []byte
	if !t.IsZero() {
		s, err := smpptime.Format(layout, t)
		if err != nil {
			return nil, err
		}
		out = []byte(s)
	}
	return append(out, 0), nil
}

// cStringOptsRespUnmarshal decodes the common `<c_octet_str> + tlv_map`
// response body shared by bind_*_resp, submit_sm_resp, and
// data_sm_resp.
func cStringOptsRespUnmarshal(body []byte, field string) (string, *Options, error) {
	c := newCursor(body)
	s, err := c.readCString(65, field)
	if err != nil {
		return "", nil, err
	}
	var opts *Options
	if c.len() > 0 {
		opts = NewOptions()
		if err := opts.UnmarshalBinary(c.remaining()); err != nil {
			return "", nil, err
		}
	}
	return s, opts, nil
}

// cStringOptsRespMarshal encodes the common `<c_octet_str> + tlv_map`
// response body.
func cStringOptsRespMarshal(str string, opts *Options, field string) ([]byte, error) {
	out, err := writeCString(nil, str, 65, field)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		return out, nil
	}
	o, err := opts.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, o...), nil
}
