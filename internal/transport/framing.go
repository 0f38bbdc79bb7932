package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// SerialSentinel and TCPSentinel delimit packets on their respective
// carriers: a fixed 4-byte marker followed by a u32 payload length,
// then the Header and payload bytes.
var (
	SerialSentinel = [4]byte{0x00, 0x80, 0xEE, 0xFF}
	TCPSentinel    = [4]byte{0x10, 0x20, 0x33, 0x44}
)

// Packet is a fully decoded frame: header plus opaque payload bytes,
// which Decode*/Encode* in codec.go further interpret per op.Kind().
type Packet struct {
	Header  Header
	Payload []byte
}

// WriteFrame writes one sentinel-delimited frame to w.
func WriteFrame(w io.Writer, sentinel [4]byte, p Packet) error {
	buf := &bytes.Buffer{}
	buf.Write(sentinel[:])
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(p.Payload))); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, p.Header); err != nil {
		return err
	}
	buf.Write(p.Payload)
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadFrame reads one sentinel-delimited frame from r, scanning forward
// byte-by-byte past noise until the sentinel is found (mirroring how a
// serial link can start mid-stream).
func ReadFrame(r *bufio.Reader, sentinel [4]byte) (Packet, error) {
	if err := scanToSentinel(r, sentinel); err != nil {
		return Packet{}, err
	}
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return Packet{}, fmt.Errorf("transport: reading frame length: %w", err)
	}
	var hdr Header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return Packet{}, fmt.Errorf("transport: reading frame header: %w", err)
	}
	if !hdr.Valid() {
		return Packet{}, fmt.Errorf("transport: bad indicator 0x%x", hdr.Indicator)
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Packet{}, fmt.Errorf("transport: reading frame payload: %w", err)
		}
	}
	return Packet{Header: hdr, Payload: payload}, nil
}

func scanToSentinel(r *bufio.Reader, sentinel [4]byte) error {
	var window [4]byte
	filled := 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if filled < 4 {
			window[filled] = b
			filled++
		} else {
			copy(window[0:3], window[1:4])
			window[3] = b
		}
		if filled == 4 && window == sentinel {
			return nil
		}
	}
}
