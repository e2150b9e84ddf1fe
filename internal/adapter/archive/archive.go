package archive

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"snowviz/internal/domain/frames"
)

const FormatVersion = 1

var (
	ErrMissingHeader  = errors.New("archive has no header line")
	ErrFrameCount     = errors.New("archive frame count mismatch")
	ErrDigestMismatch = errors.New("archive digest mismatch")
)

// Header is the first line of an archive.
type Header struct {
	Version     int    `json:"version"`
	RunID       string `json:"run_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Domain      string `json:"domain"`
	GridSize    int    `json:"grid_size"`
	Substeps    int    `json:"substeps"`
	ActionCount int    `json:"action_count"`
	FrameCount  int    `json:"frame_count"`
	// Digest is the sha256 of the frame lines, newline-terminated.
	Digest string `json:"digest"`
}

//go:embed frame.schema.json
var frameSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func frameSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("frame.schema.json", frameSchemaJSON)
	})
	return schema, schemaErr
}

// MarshalFrames renders each frame as one JSON line and returns the lines
// with their digest.
func MarshalFrames(fs []frames.Frame) ([][]byte, string, error) {
	lines := make([][]byte, 0, len(fs))
	h := sha256.New()
	for i, f := range fs {
		b, err := json.Marshal(f)
		if err != nil {
			return nil, "", fmt.Errorf("frame %d: %w", i, err)
		}
		h.Write(b)
		h.Write([]byte{'\n'})
		lines = append(lines, b)
	}
	return lines, hex.EncodeToString(h.Sum(nil)), nil
}

// Encode writes a zstd-compressed JSONL archive: the header, then one frame
// per line. FrameCount, Digest and Version are filled in from fs.
func Encode(w io.Writer, h Header, fs []frames.Frame) (Header, error) {
	lines, digest, err := MarshalFrames(fs)
	if err != nil {
		return Header{}, err
	}
	h.Version = FormatVersion
	h.FrameCount = len(lines)
	h.Digest = digest

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return Header{}, err
	}
	bw := bufio.NewWriter(enc)
	hb, err := json.Marshal(h)
	if err != nil {
		_ = enc.Close()
		return Header{}, err
	}
	for _, line := range append([][]byte{hb}, lines...) {
		if _, err := bw.Write(line); err != nil {
			_ = enc.Close()
			return Header{}, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = enc.Close()
			return Header{}, err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return Header{}, err
	}
	if err := enc.Close(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Decode reads an archive back as its header and raw frame lines.
func Decode(r io.Reader) (Header, [][]byte, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Header{}, nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Header{}, nil, err
		}
		return Header{}, nil, ErrMissingHeader
	}
	var h Header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return Header{}, nil, fmt.Errorf("header: %w", err)
	}
	lines := [][]byte{}
	for sc.Scan() {
		lines = append(lines, bytes.Clone(sc.Bytes()))
	}
	if err := sc.Err(); err != nil {
		return Header{}, nil, err
	}
	return h, lines, nil
}

// Validate checks the frame lines against the frame schema and the header's
// count and digest.
func Validate(h Header, lines [][]byte) error {
	s, err := frameSchema()
	if err != nil {
		return fmt.Errorf("compile frame schema: %w", err)
	}
	if h.FrameCount != len(lines) {
		return fmt.Errorf("%w: header=%d lines=%d", ErrFrameCount, h.FrameCount, len(lines))
	}
	sum := sha256.New()
	for i, line := range lines {
		var v any
		if err := json.Unmarshal(line, &v); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := s.Validate(v); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		sum.Write(line)
		sum.Write([]byte{'\n'})
	}
	if got := hex.EncodeToString(sum.Sum(nil)); got != h.Digest {
		return fmt.Errorf("%w: got=%s want=%s", ErrDigestMismatch, got, h.Digest)
	}
	return nil
}
