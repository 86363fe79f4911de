// Package tcp exposes the request/response service over a TCP socket.
// Every message is a UTF-8 JSON document preceded by a 4-byte big-endian
// length. Requests name an action and carry positional parameters; the
// response is whatever payload the action produces.
package tcp

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single message so a bad length prefix cannot make
// the server allocate gigabytes.
const MaxFrameSize = 16 << 20

// Request is the wire shape of one client call.
type Request struct {
	Action string `json:"action"`
	Params []any  `json:"params"`
}

// ReadFrame reads one length-prefixed message. io.EOF on a clean close
// before the length prefix; io.ErrUnexpectedEOF on a truncated message.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size == 0 {
		return nil, io.EOF
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes one length-prefixed message.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// MarshalPayload encodes a response payload without HTML escaping, keeping
// accented text readable on the wire.
func MarshalPayload(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
