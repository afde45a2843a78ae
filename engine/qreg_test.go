// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import "testing"

func TestQRegNumStoreGet(t *testing.T) {
	f := NewQFile()
	if err := f.StoreNum('A', false, 42); err != nil {
		t.Fatalf("StoreNum: %v", err)
	}
	v, err := f.GetNum('a', false) // lowercase folds to 'A'
	if err != nil {
		t.Fatalf("GetNum: %v", err)
	}
	if v != 42 {
		t.Errorf("GetNum = %d, want 42", v)
	}
}

func TestQRegAddToNum(t *testing.T) {
	f := NewQFile()
	f.StoreNum('B', false, 10)
	v, err := f.AddToNum('B', false, 5)
	if err != nil {
		t.Fatalf("AddToNum: %v", err)
	}
	if v != 15 {
		t.Errorf("AddToNum result = %d, want 15", v)
	}
}

func TestQRegTextStoreAppendDelete(t *testing.T) {
	f := NewQFile()
	if err := f.StoreText('Q', false, []byte("hello")); err != nil {
		t.Fatalf("StoreText: %v", err)
	}
	if err := f.AppendText('Q', false, []byte(" world")); err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	got, err := f.GetText('Q', false)
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("GetText = %q, want %q", got, "hello world")
	}
	if err := f.DeleteText('Q', false); err != nil {
		t.Fatalf("DeleteText: %v", err)
	}
	got, _ = f.GetText('Q', false)
	if len(got) != 0 {
		t.Errorf("GetText after delete = %q, want empty", got)
	}
}

func TestQRegGetCharAndSize(t *testing.T) {
	f := NewQFile()
	f.StoreText('X', false, []byte("abc"))
	c, err := f.GetChar('X', false, 1)
	if err != nil {
		t.Fatalf("GetChar: %v", err)
	}
	if c != 'b' {
		t.Errorf("GetChar(1) = %d, want %d", c, 'b')
	}
	c, _ = f.GetChar('X', false, 99)
	if c != EOF {
		t.Errorf("GetChar(99) = %d, want EOF", c)
	}
	size, err := f.Size('X', false)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 3 {
		t.Errorf("Size = %d, want 3", size)
	}
}

func TestQRegInvalidName(t *testing.T) {
	f := NewQFile()
	if _, err := f.GetNum('!', false); err == nil {
		t.Fatal("GetNum with invalid name should fail")
	}
}

func TestQRegPushPop(t *testing.T) {
	f := NewQFile()
	f.StoreNum('C', false, 1)
	f.StoreText('C', false, []byte("one"))
	if err := f.Push('C', false); err != nil {
		t.Fatalf("Push: %v", err)
	}
	f.StoreNum('C', false, 2)
	f.StoreText('C', false, []byte("two"))
	if err := f.Pop('C', false); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	n, _ := f.GetNum('C', false)
	text, _ := f.GetText('C', false)
	if n != 1 || string(text) != "one" {
		t.Errorf("after Pop: num=%d text=%q, want 1 \"one\"", n, text)
	}
}

func TestQRegPopUnderflow(t *testing.T) {
	f := NewQFile()
	if err := f.Pop('A', false); err == nil {
		t.Fatal("Pop on empty push-down list should fail")
	}
}

func TestQRegLocalFrames(t *testing.T) {
	f := NewQFile()
	f.StoreNum('L', true, 1)
	if err := f.PushLocalFrame(); err != nil {
		t.Fatalf("PushLocalFrame: %v", err)
	}
	if f.LocalDepth() != 2 {
		t.Errorf("LocalDepth() = %d, want 2", f.LocalDepth())
	}
	// fresh frame, same name should read back zero
	v, _ := f.GetNum('L', true)
	if v != 0 {
		t.Errorf("GetNum in fresh local frame = %d, want 0", v)
	}
	f.PopLocalFrame()
	v, _ = f.GetNum('L', true)
	if v != 1 {
		t.Errorf("GetNum after PopLocalFrame = %d, want 1", v)
	}
}

func TestQRegResetToGlobal(t *testing.T) {
	f := NewQFile()
	f.PushLocalFrame()
	f.PushLocalFrame()
	f.ResetToGlobal()
	if f.LocalDepth() != 1 {
		t.Errorf("LocalDepth() after ResetToGlobal = %d, want 1", f.LocalDepth())
	}
}

func TestQRegTotalQSize(t *testing.T) {
	f := NewQFile()
	f.StoreText('A', false, []byte("ab"))
	f.StoreText('B', true, []byte("cde"))
	if got := f.TotalQSize(); got != 5 {
		t.Errorf("TotalQSize() = %d, want 5", got)
	}
}
