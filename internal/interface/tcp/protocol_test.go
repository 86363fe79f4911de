package tcp

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"action":"login_aluno","params":["RA100","señha"]}`)

	require.NoError(t, WriteFrame(&buf, payload))
	assert.Equal(t, 4+len(payload), buf.Len())

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameCleanClose(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	assert.Equal(t, io.EOF, err)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], 100)
	buf.Write(header[:])
	buf.WriteString("short")

	_, err := ReadFrame(&buf)
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], MaxFrameSize+1)
	buf.Write(header[:])

	_, err := ReadFrame(&buf)
	assert.Error(t, err)
}

func TestMarshalPayloadKeepsAccents(t *testing.T) {
	raw, err := MarshalPayload(map[string]any{"message": "Ação & reação"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Ação & reação")
	assert.False(t, bytes.HasSuffix(raw, []byte("\n")))
}
