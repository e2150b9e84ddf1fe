package archive

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/snowman"
)

func sampleFrames(t *testing.T) []frames.Frame {
	t.Helper()
	snow := map[snowman.Coordinate]bool{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			snow[snowman.Coordinate{Row: r, Col: c}] = r == 0
		}
	}
	world := snowman.WorldModel{
		GridSize:  3,
		Snow:      snow,
		Balls:     map[string]snowman.Coordinate{"b1": {Row: 1, Col: 0}},
		BallSize:  map[string]snowman.BallSize{"b1": snowman.BallSmall},
		Character: snowman.Coordinate{Row: 1, Col: 1},
		Domain:    "snowman_basic_adl",
	}
	res := frames.NewSynthesizer(4).Run(world, []string{
		"move_character loc_2_2 loc_2_3 dir_right",
		"move_character loc_2_3 loc_2_2 dir_left",
		"push b1 loc_2_1 to loc_1_1",
		"goal",
		"nonsense",
	})
	return res.Frames
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	fs := sampleFrames(t)
	var buf bytes.Buffer
	h, err := Encode(&buf, Header{RunID: "run-1", Name: "demo", Domain: "snowman_basic_adl", GridSize: 3, Substeps: 4, ActionCount: 5}, fs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if h.FrameCount != len(fs) || h.Digest == "" || h.Version != FormatVersion {
		t.Fatalf("unexpected header: %+v", h)
	}

	got, lines, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("header mismatch: got=%+v want=%+v", got, h)
	}
	if len(lines) != len(fs) {
		t.Fatalf("lines=%d want %d", len(lines), len(fs))
	}
	if err := Validate(got, lines); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	fs := sampleFrames(t)
	var a, b bytes.Buffer
	if _, err := Encode(&a, Header{Domain: "snowman_basic_adl"}, fs); err != nil {
		t.Fatalf("encode a: %v", err)
	}
	if _, err := Encode(&b, Header{Domain: "snowman_basic_adl"}, sampleFrames(t)); err != nil {
		t.Fatalf("encode b: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("archives of identical runs differ")
	}
}

func TestValidate_RejectsSchemaViolation(t *testing.T) {
	fs := sampleFrames(t)
	lines, digest, err := MarshalFrames(fs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	lines[1] = []byte(strings.Replace(string(lines[1]), `"alpha":0`, `"alpha":2`, 1))
	h := Header{FrameCount: len(lines), Digest: digest}
	err = Validate(h, lines)
	if err == nil || !strings.Contains(err.Error(), "frame 1") {
		t.Fatalf("expected schema error on frame 1, got %v", err)
	}
}

func TestValidate_RejectsMissingMotionFields(t *testing.T) {
	line := []byte(`{"type":"move","time":1,"alpha":0,"snapshot":{"grid_size":3,"snow":{},"balls":{},"ball_size":{},"character":"0,0"}}`)
	err := Validate(Header{FrameCount: 1}, [][]byte{line})
	if err == nil || !strings.Contains(err.Error(), "frame 0") {
		t.Fatalf("expected move without start/end to be rejected, got %v", err)
	}
}

func TestValidate_DetectsTampering(t *testing.T) {
	fs := sampleFrames(t)
	lines, digest, err := MarshalFrames(fs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	lines = lines[:len(lines)-1]
	if err := Validate(Header{FrameCount: len(fs), Digest: digest}, lines); !errors.Is(err, ErrFrameCount) {
		t.Fatalf("expected ErrFrameCount, got %v", err)
	}
	if err := Validate(Header{FrameCount: len(lines), Digest: digest}, lines); !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("expected ErrDigestMismatch, got %v", err)
	}
}

func TestDecode_EmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	enc, err := Encode(&buf, Header{}, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if enc.FrameCount != 0 {
		t.Fatalf("frame count=%d", enc.FrameCount)
	}
	_, lines, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no frame lines, got %d", len(lines))
	}
}
