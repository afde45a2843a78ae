// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const esc = "\x1b"

// TestScenarioInsertAndType covers insert-then-type: insert text, then
// type the whole buffer via H (push 0,Z).
func TestScenarioInsertAndType(t *testing.T) {
	e := New(false)
	var out bytes.Buffer
	e.Out = &out
	if err := e.Run([]byte("Ihello,world" + esc + "HT" + esc + esc)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("hello,world")) {
		t.Errorf("type-out = %q, want it to contain %q", out.Bytes(), "hello,world")
	}
	if e.Buf.Z() != 11 {
		t.Errorf("Z() = %d, want 11", e.Buf.Z())
	}
	if e.Buf.Dot() != 11 {
		t.Errorf("Dot() = %d, want 11", e.Buf.Dot())
	}
}

// TestScenarioSearchAndReplace covers a search-and-replace pass.
func TestScenarioSearchAndReplace(t *testing.T) {
	e := New(false)
	e.Buf.Insert([]byte("the quick brown fox"))
	e.Buf.SetDot(0)
	cmd := "J" + "FNfox" + esc + "box" + esc
	if err := e.Run([]byte(cmd)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "the quick brown box" {
		t.Errorf("buffer = %q, want %q", got, "the quick brown box")
	}
	if e.Buf.Dot() != 19 {
		t.Errorf("Dot() = %d, want 19", e.Buf.Dot())
	}
	if string(e.lastSearch) != "fox" {
		t.Errorf("lastSearch = %q, want %q", e.lastSearch, "fox")
	}
	if e.Buf.LastInsertLen() != 3 {
		t.Errorf("LastInsertLen() = %d, want 3", e.Buf.LastInsertLen())
	}
}

// TestScenarioQRegArithmetic covers Q-register arithmetic and type-out.
func TestScenarioQRegArithmetic(t *testing.T) {
	e := New(false)
	var out bytes.Buffer
	e.Out = &out
	if err := e.Run([]byte("42UA 5%A QA=" + esc + esc)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "47\r\n" {
		t.Errorf("type-out = %q, want %q", got, "47\r\n")
	}
	n, err := e.QReg.GetNum('A', false)
	if err != nil {
		t.Fatalf("GetNum: %v", err)
	}
	if n != 47 {
		t.Errorf("Q-register A = %d, want 47", n)
	}
	text, _ := e.QReg.GetText('A', false)
	if len(text) != 0 {
		t.Errorf("Q-register A text = %q, want empty", text)
	}
}

// TestScenarioConditional covers a numeric conditional with an else branch.
func TestScenarioConditional(t *testing.T) {
	e := New(false)
	cmd := `7"G Igood` + esc + ` | Ibad` + esc + ` '` + esc + esc
	if err := e.Run([]byte(cmd)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "good" {
		t.Errorf("buffer = %q, want %q", got, "good")
	}
}

// TestScenarioLoopEarlyExit covers a counted loop
// that inserts "A" each pass and exits early via ";" once a local
// Q-register reaches a threshold. The local register is incremented
// explicitly each pass (1%.A) since nothing auto-initialises a per-
// iteration counter.
func TestScenarioLoopEarlyExit(t *testing.T) {
	e := New(false)
	cmd := "5<IA" + esc + "1%.A Q.A-3;>" + esc + esc
	if err := e.Run([]byte(cmd)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "AAA" {
		t.Errorf("buffer = %q, want %q", got, "AAA")
	}
}

// TestScenarioPaging covers opening a two-page input
// and yanking pages in turn. Both EY and plain P advance to the next queued
// page, so two
// commands already exhaust a two-page file: EY surfaces page one, P then
// surfaces page two.
func TestScenarioPaging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two-pages.txt")
	content := "page one\n\fpage two\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	e := New(true)
	cmd := "ER" + path + esc + "EY" + esc
	if err := e.Run([]byte(cmd)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "page one\n" {
		t.Errorf("buffer after EY = %q, want %q", got, "page one\n")
	}
	if err := e.Run([]byte("P" + esc)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "page two\n" {
		t.Errorf("buffer after P = %q, want %q", got, "page two\n")
	}
}

// TestIsExit verifies that EX surfaces as a recognisable clean exit rather
// than a generic error.
func TestIsExit(t *testing.T) {
	e := New(false)
	err := e.Run([]byte("EX" + esc))
	if err == nil {
		t.Fatal("EX should return the exit sentinel, not nil")
	}
	if !IsExit(err) {
		t.Errorf("IsExit(%v) = false, want true", err)
	}
}
