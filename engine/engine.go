// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

// Package engine implements the TECO-64 core: the command interpreter, the
// gap-buffered edit buffer, the Q-register file and the pattern matcher.
// Terminal I/O, curses display and CLI option parsing are external
// collaborators, consumed here only through the narrow Sink/RawKeySource/
// FileSystem interfaces.
package engine

import "io"

// Sink is the byte sink for typed output: everything :Gq,
// T/V and error printing writes through it.
type Sink interface {
	io.Writer
}

// RawKeySource is the external collaborator that supplies one raw key at a
// time. The host may install one as Engine.Key; no engine command reads
// from it.
type RawKeySource interface {
	ReadKey() (byte, error)
}

// Interrupter lets the host program signal a level-triggered interrupt
// (Ctrl/C); the engine polls it at loop/command boundaries.
type Interrupter interface {
	Interrupted() bool
	ClearInterrupt()
}

// nopInterrupter is used when the host doesn't wire one up.
type nopInterrupter struct{}

func (nopInterrupter) Interrupted() bool  { return false }
func (nopInterrupter) ClearInterrupt()    {}

// Engine is the engine context: it owns the edit
// buffer, the Q-register file, the expression stack, the flag set and the
// file handles, and is threaded through every primitive instead of relying
// on process-wide globals.
type Engine struct {
	Buf    *Buffer
	QReg   *QFile
	EStack *EStack
	Flags  *Flags
	Files  *FileSystem

	Out Sink
	Key RawKeySource
	Int Interrupter

	cmdStack []*CmdBuf
	loops    []loopFrame
	ifs      []ifFrame
	macros   []macroFrame

	pendingM *int

	lastSearch   []byte
	lastFilename string
	keepDotFail  bool

	pager *pager

	nextFrameID int
}

// New creates an Engine with an empty edit buffer, a fresh Q-register file
// and default flags. paging selects the edit buffer's size ceiling (1 GiB
// when true, 1 MiB when false); input files are split into pages at form
// feeds either way.
func New(paging bool) *Engine {
	return &Engine{
		Buf:    NewBuffer(paging),
		QReg:   NewQFile(),
		EStack: NewEStack(),
		Flags:  NewFlags(),
		Files:  NewFileSystem(),
		Int:    nopInterrupter{},
		pager:  newPager(paging, false),
	}
}

func (e *Engine) interrupter() Interrupter {
	if e.Int == nil {
		return nopInterrupter{}
	}
	return e.Int
}

// Run scans and executes source as a top-level command string, until it is
// exhausted or an uncaught error propagates.
func (e *Engine) Run(source []byte) error {
	cb := NewCmdBuf(source, e.nextFrameID)
	e.nextFrameID++
	e.cmdStack = append(e.cmdStack, cb)
	defer func() { e.cmdStack = e.cmdStack[:len(e.cmdStack)-1] }()
	return e.runTop()
}

// runTop drives the current top-of-stack command buffer until it is
// exhausted, handling macro returns (Mq pushes a new buffer on top; when
// that buffer is exhausted, control returns to the caller's buffer).
func (e *Engine) runTop() error {
	for {
		cb := e.top()
		if cb == nil {
			return nil
		}
		cb.SkipWhitespace()
		if cb.AtEnd() {
			if len(e.macros) == 0 {
				return nil
			}
			if err := e.returnFromMacro(); err != nil {
				return err
			}
			continue
		}
		if e.interrupter().Interrupted() {
			e.interrupter().ClearInterrupt()
			return Fail(ErrXAB, "execution interrupted")
		}
		if err := e.step(cb); err != nil {
			return err
		}
	}
}

func (e *Engine) top() *CmdBuf {
	if len(e.cmdStack) == 0 {
		return nil
	}
	return e.cmdStack[len(e.cmdStack)-1]
}

// bindN pops and returns the fully reduced expression value on top of the
// stack, if any, for binding to a command's "n" argument.
func (e *Engine) bindN() (*int, error) {
	if e.EStack.Empty() {
		return nil, nil
	}
	v, err := e.EStack.Finish()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// bindArgs resolves the m,n pair for the command about to run: m from a
// prior comma, n from whatever is left on the expression
// stack.
func (e *Engine) bindArgs() (m, n *int, err error) {
	n, err = e.bindN()
	if err != nil {
		return nil, nil, err
	}
	m = e.pendingM
	e.pendingM = nil
	if m != nil && n == nil {
		return nil, nil, Fail(ErrNON, "m argument given without n argument")
	}
	return m, n, nil
}

// ResetForError is the main-loop error recovery policy: reset the command
// buffer, restore the global Q-register frame, and reset conditional/loop
// depths. Hosts call this after printing an uncaught error and before
// reading the next top-level command.
func (e *Engine) ResetForError() {
	e.cmdStack = e.cmdStack[:0]
	e.macros = nil
	e.loops = nil
	e.ifs = nil
	e.pendingM = nil
	e.EStack.Reset()
	e.QReg.ResetToGlobal()
}
