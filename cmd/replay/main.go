package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"snowviz/internal/adapter/archive"
	"snowviz/internal/app/load"
	"snowviz/internal/config"
)

func main() {
	var (
		problemPath = flag.String("problem", "", "path to the problem file")
		planPath    = flag.String("plan", "", "path to the plan or planner output")
		outPath     = flag.String("out", "", "write a .frames.jsonl.zst archive here")
		archivePath = flag.String("archive", "", "verify this archive (re-synthesizes when -problem and -plan are set)")
		tuningPath  = flag.String("tuning", "./configs/tuning.yaml", "playback tuning file")
		substeps    = flag.Int("substeps", 0, "frames per action (0 = tuning value)")
	)
	flag.Parse()

	k := *substeps
	if k <= 0 {
		tuning, err := config.LoadTuning(*tuningPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		k = tuning.Substeps
	}

	switch {
	case *archivePath != "":
		h, err := verify(*archivePath, *problemPath, *planPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "verify:", err)
			os.Exit(1)
		}
		fmt.Printf("archive v%d domain=%s substeps=%d actions=%d frames=%d digest=%s OK\n",
			h.Version, h.Domain, h.Substeps, h.ActionCount, h.FrameCount, h.Digest)
	case *problemPath != "" && *planPath != "" && *outPath != "":
		h, err := export(*problemPath, *planPath, *outPath, k)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s domain=%s substeps=%d actions=%d frames=%d\n",
			*outPath, h.Domain, h.Substeps, h.ActionCount, h.FrameCount)
	default:
		fmt.Fprintln(os.Stderr, "usage: replay -problem P -plan Q -out F | replay -archive F [-problem P -plan Q]")
		os.Exit(2)
	}
}

func synthesize(problemPath, planPath string, substeps int) (load.Output, error) {
	problemText, err := os.ReadFile(problemPath)
	if err != nil {
		return load.Output{}, err
	}
	planText, err := os.ReadFile(planPath)
	if err != nil {
		return load.Output{}, err
	}
	return load.Synthesize(string(problemText), string(planText), substeps)
}

func export(problemPath, planPath, outPath string, substeps int) (archive.Header, error) {
	out, err := synthesize(problemPath, planPath, substeps)
	if err != nil {
		return archive.Header{}, err
	}
	for _, ae := range out.Result.Errors {
		fmt.Fprintln(os.Stderr, "warning:", ae.Error())
	}

	f, err := os.Create(outPath)
	if err != nil {
		return archive.Header{}, err
	}
	h, err := archive.Encode(f, archive.Header{
		Name:        strings.TrimSuffix(filepath.Base(planPath), filepath.Ext(planPath)),
		Domain:      out.World.Domain,
		GridSize:    out.World.GridSize,
		Substeps:    out.Result.Substeps,
		ActionCount: len(out.Actions),
	}, out.Result.Frames)
	if err != nil {
		_ = f.Close()
		return archive.Header{}, err
	}
	return h, f.Close()
}

func verify(archivePath, problemPath, planPath string) (archive.Header, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return archive.Header{}, err
	}
	defer f.Close()
	return verifyReader(f, problemPath, planPath)
}

func verifyReader(r io.Reader, problemPath, planPath string) (archive.Header, error) {
	h, lines, err := archive.Decode(r)
	if err != nil {
		return archive.Header{}, err
	}
	if err := archive.Validate(h, lines); err != nil {
		return h, err
	}
	if problemPath == "" || planPath == "" {
		return h, nil
	}

	out, err := synthesize(problemPath, planPath, h.Substeps)
	if err != nil {
		return h, err
	}
	want, digest, err := archive.MarshalFrames(out.Result.Frames)
	if err != nil {
		return h, err
	}
	if len(want) != len(lines) {
		return h, fmt.Errorf("re-synthesis produced %d frames, archive has %d", len(want), len(lines))
	}
	for i := range want {
		if !bytes.Equal(want[i], lines[i]) {
			return h, fmt.Errorf("frame %d differs after re-synthesis", i)
		}
	}
	if digest != h.Digest {
		return h, fmt.Errorf("digest mismatch: got=%s want=%s", digest, h.Digest)
	}
	return h, nil
}
