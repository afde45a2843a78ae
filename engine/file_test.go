// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileOpenInputAndAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("first\nsecond\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	e := New(false)
	if err := e.Run([]byte("ER" + path + esc)); err != nil {
		t.Fatalf("Run ER: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "" {
		t.Errorf("buffer after ER = %q, want %q (ER opens the file without reading it)", got, "")
	}
	if err := e.Run([]byte("A")); err != nil {
		t.Fatalf("Run A: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "first\n" {
		t.Errorf("buffer after A = %q, want %q", got, "first\n")
	}
}

func TestFileOpenInputMissingFails(t *testing.T) {
	e := New(false)
	err := e.Run([]byte("ERno-such-file-anywhere" + esc))
	if err == nil {
		t.Fatal("ER on a missing file should fail")
	}
	if got, ok := AsError(err); !ok || got.Mnemonic != ErrFNF {
		t.Errorf("error = %v, want ErrFNF", err)
	}
}

func TestFileOutputWriteAndClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.txt")
	e := New(false)
	e.Buf.Insert([]byte("hello out"))
	if err := e.Run([]byte("EW" + path + esc)); err != nil {
		t.Fatalf("Run EW: %v", err)
	}
	if err := e.Run([]byte("EC")); err != nil {
		t.Fatalf("Run EC: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello out" {
		t.Errorf("file content = %q, want %q", data, "hello out")
	}
}

func TestFileOutputBackupPreservesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(path, []byte("old content"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	e := New(false)
	e.Buf.Insert([]byte("new content"))
	if err := e.Run([]byte("EB" + path + esc)); err != nil {
		t.Fatalf("Run EB: %v", err)
	}
	if err := e.Run([]byte("EC")); err != nil {
		t.Fatalf("Run EC: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile %s: %v", path, err)
	}
	if string(data) != "new content" {
		t.Errorf("file content = %q, want %q", data, "new content")
	}
	backup, err := os.ReadFile(path + "~")
	if err != nil {
		t.Fatalf("ReadFile backup: %v", err)
	}
	if string(backup) != "old content" {
		t.Errorf("backup content = %q, want %q", backup, "old content")
	}
}

func TestFileOutputDiscardEK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "discard.txt")
	if err := os.WriteFile(path, []byte("untouched"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	e := New(false)
	e.Buf.Insert([]byte("never written"))
	if err := e.Run([]byte("EW" + path + esc)); err != nil {
		t.Fatalf("Run EW: %v", err)
	}
	if err := e.Run([]byte("EK")); err != nil {
		t.Fatalf("Run EK: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "untouched" {
		t.Errorf("file content after EK = %q, want %q", data, "untouched")
	}
}

func TestFileWildcardIteration(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tmp", "b.tmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	e := New(false)
	glob := filepath.Join(dir, "*.tmp")
	if err := e.Run([]byte("EN" + glob + esc)); err != nil {
		t.Fatalf("Run EN: %v", err)
	}
	first, err := e.QReg.GetText('0', false)
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("Q-register 0 empty after first EN")
	}
	if err := e.Run([]byte("EN" + esc)); err != nil {
		t.Fatalf("Run EN (continue): %v", err)
	}
	second, _ := e.QReg.GetText('0', false)
	if string(second) == string(first) {
		t.Errorf("second EN match = %q, want a different file than %q", second, first)
	}
	if err := e.Run([]byte(":EN" + esc)); err != nil {
		t.Fatalf("Run :EN at exhaustion: %v", err)
	}
	v, err := e.EStack.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if v != 0 {
		t.Errorf(":EN at exhaustion = %d, want 0", v)
	}
}

func TestFileQRegRoundTripEPctAndEQ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qreg.txt")
	e := New(false)
	if err := e.QReg.StoreText('A', false, []byte("stashed text")); err != nil {
		t.Fatalf("StoreText: %v", err)
	}
	if err := e.Run([]byte("E%A" + path + esc)); err != nil {
		t.Fatalf("Run E%%A: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "stashed text" {
		t.Errorf("file content = %q, want %q", data, "stashed text")
	}
	if err := e.Run([]byte("EQB" + path + esc)); err != nil {
		t.Fatalf("Run EQB: %v", err)
	}
	text, err := e.QReg.GetText('B', false)
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if string(text) != "stashed text" {
		t.Errorf("Q-register B = %q, want %q", text, "stashed text")
	}
}

func TestFileExternalCommandEG(t *testing.T) {
	e := New(false)
	if err := e.Run([]byte(":EGtrue" + esc)); err != nil {
		t.Fatalf("Run :EG: %v", err)
	}
	status, err := e.EStack.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if status != 0 {
		t.Errorf("exit status = %d, want 0", status)
	}
}

func TestFileExternalCaptureEZ(t *testing.T) {
	e := New(false)
	if err := e.Run([]byte("EZecho hi" + esc)); err != nil {
		t.Fatalf("Run EZ: %v", err)
	}
	if got := string(e.Buf.Bytes()); got != "hi\n" {
		t.Errorf("buffer after EZ = %q, want %q", got, "hi\n")
	}
}

func TestIsExitSentinelIdentity(t *testing.T) {
	if IsExit(Fail(ErrSRH, "not an exit")) {
		t.Error("IsExit should not match an unrelated *Error")
	}
}
