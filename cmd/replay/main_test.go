package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const problemText = `(define (problem snowman-3x3)
  (:domain snowman_basic)
  (:init
    (snow loc_1_1)
    (:location_type loc_3_3 0)
    (character_at loc_2_2)
    (ball_at b1 loc_2_1)
    (ball_size_small b1)))`

const planText = `(push b1 loc_2_1 to loc_1_1)
(move_character loc_2_1 loc_2_2 right)
(goal)`

func writeInputs(t *testing.T, dir, plan string) (string, string) {
	t.Helper()
	problemPath := filepath.Join(dir, "p.pddl")
	planPath := filepath.Join(dir, "p.plan")
	if err := os.WriteFile(problemPath, []byte(problemText), 0o644); err != nil {
		t.Fatalf("write problem: %v", err)
	}
	if err := os.WriteFile(planPath, []byte(plan), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return problemPath, planPath
}

func TestExportThenVerify(t *testing.T) {
	dir := t.TempDir()
	problemPath, planPath := writeInputs(t, dir, planText)
	out := filepath.Join(dir, "p.frames.jsonl.zst")

	h, err := export(problemPath, planPath, out, 5)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got, want := h.FrameCount, 1+4*5; got != want {
		t.Fatalf("frame count mismatch: got=%d want=%d", got, want)
	}
	if h.Name != "p" {
		t.Fatalf("name mismatch: got=%q", h.Name)
	}

	got, err := verify(out, problemPath, planPath)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Digest != h.Digest {
		t.Fatalf("digest mismatch: got=%s want=%s", got.Digest, h.Digest)
	}
}

func TestVerify_DetectsDifferentPlan(t *testing.T) {
	dir := t.TempDir()
	problemPath, planPath := writeInputs(t, dir, planText)
	out := filepath.Join(dir, "p.frames.jsonl.zst")
	if _, err := export(problemPath, planPath, out, 5); err != nil {
		t.Fatalf("export: %v", err)
	}

	other := t.TempDir()
	otherProblem, otherPlan := writeInputs(t, other, strings.Replace(planText, " right)", " left)", 1))
	if _, err := verify(out, otherProblem, otherPlan); err == nil {
		t.Fatalf("expected verification against a different plan to fail")
	}
}

func TestVerify_SchemaOnly(t *testing.T) {
	dir := t.TempDir()
	problemPath, planPath := writeInputs(t, dir, planText)
	out := filepath.Join(dir, "p.frames.jsonl.zst")
	if _, err := export(problemPath, planPath, out, 3); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := verify(out, "", ""); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
