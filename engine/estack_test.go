// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import "testing"

func TestEStackSimpleAddition(t *testing.T) {
	e := NewEStack()
	e.PushValue(2)
	if err := e.PushOperator(opPlus); err != nil {
		t.Fatalf("PushOperator: %v", err)
	}
	e.PushValue(3)
	v, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if v != 5 {
		t.Errorf("2+3 = %d, want 5", v)
	}
}

func TestEStackPrecedence(t *testing.T) {
	e := NewEStack()
	// 2 + 3 * 4 = 14
	e.PushValue(2)
	e.PushOperator(opPlus)
	e.PushValue(3)
	e.PushOperator(opMul)
	e.PushValue(4)
	v, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if v != 14 {
		t.Errorf("2+3*4 = %d, want 14", v)
	}
}

func TestEStackParens(t *testing.T) {
	e := NewEStack()
	// (2 + 3) * 4 = 20
	e.OpenParen()
	e.PushValue(2)
	e.PushOperator(opPlus)
	e.PushValue(3)
	if err := e.CloseParen(); err != nil {
		t.Fatalf("CloseParen: %v", err)
	}
	e.PushOperator(opMul)
	e.PushValue(4)
	v, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if v != 20 {
		t.Errorf("(2+3)*4 = %d, want 20", v)
	}
}

func TestEStackUnaryMinus(t *testing.T) {
	e := NewEStack()
	e.PushUnary(opUnaryMinus)
	e.PushValue(5)
	v, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if v != -5 {
		t.Errorf("-5 = %d, want -5", v)
	}
}

func TestEStackDivisionByZero(t *testing.T) {
	e := NewEStack()
	e.PushValue(4)
	e.PushOperator(opDiv)
	e.PushValue(0)
	if _, err := e.Finish(); err == nil {
		t.Fatal("4/0 should fail")
	}
}

func TestEStackMissingRightParen(t *testing.T) {
	e := NewEStack()
	e.OpenParen()
	e.PushValue(1)
	if _, err := e.Finish(); err == nil {
		t.Fatal("unmatched ( should fail at Finish")
	}
}

func TestEStackMissingLeftParen(t *testing.T) {
	e := NewEStack()
	e.PushValue(1)
	if err := e.CloseParen(); err == nil {
		t.Fatal("CloseParen with no matching ( should fail")
	}
}

func TestEStackComparisonOperators(t *testing.T) {
	e := NewEStack()
	e.PushValue(3)
	e.PushOperator(opLt)
	e.PushValue(5)
	v, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if v != -1 {
		t.Errorf("3<5 = %d, want -1 (true)", v)
	}
}

func TestEStackResetClearsState(t *testing.T) {
	e := NewEStack()
	e.PushValue(1)
	e.PushOperator(opPlus)
	e.Reset()
	if !e.Empty() {
		t.Error("Empty() should be true after Reset")
	}
	if e.LastIsValue() {
		t.Error("LastIsValue() should be false after Reset")
	}
}
