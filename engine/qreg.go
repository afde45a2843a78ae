// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import "strings"

// maxLocalFrames bounds the local Q-register frame stack, matching the
// macro recursion ceiling.
const maxLocalFrames = 16

const qNames = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// qcell is one Q-register: a signed integer plus an owned growable text.
type qcell struct {
	num  int
	text []byte
}

// qsnapshot is what `[q` pushes and `]q` restores: a full copy
// of the integer and the text bytes, not a reference.
type qsnapshot struct {
	name  byte
	local bool
	cell  qcell
}

// QFile is the Q-register file: 36 global cells, a stack of local-frame
// arrays (one array of 36 per active macro invocation), and a process-wide
// push-down list.
type QFile struct {
	global [36]qcell
	locals []*[36]qcell // index 0 is the implicit outermost frame
	pushed []qsnapshot
}

// NewQFile creates a Q-register file with its implicit outermost local
// frame already present: local references outside any macro address the
// outermost (implicit) frame.
func NewQFile() *QFile {
	f := &QFile{}
	f.locals = append(f.locals, &[36]qcell{})
	return f
}

// getIndex folds case and validates name
func getIndex(name byte) (int, error) {
	if name >= 'a' && name <= 'z' {
		name -= 'a' - 'A'
	}
	idx := strings.IndexByte(qNames, name)
	if idx < 0 {
		return 0, Failf(ErrIQN, "invalid Q-register name %q", name)
	}
	return idx, nil
}

// cellRef resolves name/local to a pointer into the right array, so callers
// can read-modify-write in one lookup.
func (f *QFile) cellRef(name byte, local bool) (*qcell, error) {
	idx, err := getIndex(name)
	if err != nil {
		return nil, err
	}
	if local {
		top := f.locals[len(f.locals)-1]
		return &top[idx], nil
	}
	return &f.global[idx], nil
}

// GetNum returns a Q-register's integer cell.
func (f *QFile) GetNum(name byte, local bool) (int, error) {
	c, err := f.cellRef(name, local)
	if err != nil {
		return 0, err
	}
	return c.num, nil
}

// StoreNum sets a Q-register's integer cell (Uq).
func (f *QFile) StoreNum(name byte, local bool, v int) error {
	c, err := f.cellRef(name, local)
	if err != nil {
		return err
	}
	c.num = v
	return nil
}

// AddToNum adds to a Q-register's integer cell (%q).
func (f *QFile) AddToNum(name byte, local bool, v int) (int, error) {
	c, err := f.cellRef(name, local)
	if err != nil {
		return 0, err
	}
	c.num += v
	return c.num, nil
}

// GetText returns a copy of a Q-register's text.
func (f *QFile) GetText(name byte, local bool) ([]byte, error) {
	c, err := f.cellRef(name, local)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(c.text))
	copy(out, c.text)
	return out, nil
}

// StoreText replaces a Q-register's text wholesale (^Uq, Xq).
func (f *QFile) StoreText(name byte, local bool, text []byte) error {
	c, err := f.cellRef(name, local)
	if err != nil {
		return err
	}
	c.text = append([]byte(nil), text...)
	return nil
}

// AppendText appends to a Q-register's text (used by :Xq and :^Uq).
func (f *QFile) AppendText(name byte, local bool, text []byte) error {
	c, err := f.cellRef(name, local)
	if err != nil {
		return err
	}
	c.text = append(c.text, text...)
	return nil
}

// DeleteText clears a Q-register's text, keeping its integer cell.
func (f *QFile) DeleteText(name byte, local bool) error {
	c, err := f.cellRef(name, local)
	if err != nil {
		return err
	}
	c.text = nil
	return nil
}

// GetChar returns the nth byte of a Q-register's text, or EOF.
func (f *QFile) GetChar(name byte, local bool, n int) (int, error) {
	c, err := f.cellRef(name, local)
	if err != nil {
		return 0, err
	}
	if n < 0 || n >= len(c.text) {
		return EOF, nil
	}
	return int(c.text[n]), nil
}

// Size returns the length in bytes of a Q-register's text.
func (f *QFile) Size(name byte, local bool) (int, error) {
	c, err := f.cellRef(name, local)
	if err != nil {
		return 0, err
	}
	return len(c.text), nil
}

// TotalQSize sums the text length of every global and current-local cell,
// for ^Z.
func (f *QFile) TotalQSize() int {
	n := 0
	for _, c := range f.global {
		n += len(c.text)
	}
	top := f.locals[len(f.locals)-1]
	for _, c := range top {
		n += len(c.text)
	}
	return n
}

// Push saves a cell's integer and text onto the push-down list (`[q`).
func (f *QFile) Push(name byte, local bool) error {
	c, err := f.cellRef(name, local)
	if err != nil {
		return err
	}
	if len(f.pushed) >= 1<<16 {
		return Fail(ErrPDO, "push-down list overflow")
	}
	snap := qsnapshot{name: name, local: local, cell: qcell{num: c.num, text: append([]byte(nil), c.text...)}}
	f.pushed = append(f.pushed, snap)
	return nil
}

// Pop restores the most recent push for this exact name/locality (`]q`),
// failing if the stack is empty or its top doesn't match.
func (f *QFile) Pop(name byte, local bool) error {
	if len(f.pushed) == 0 {
		return Fail(ErrPDO, "push-down list underflow")
	}
	top := f.pushed[len(f.pushed)-1]
	idx, err := getIndex(name)
	if err != nil {
		return err
	}
	topIdx, _ := getIndex(top.name)
	if topIdx != idx || top.local != local {
		return Fail(ErrPDO, "push-down list mismatch")
	}
	f.pushed = f.pushed[:len(f.pushed)-1]
	c, err := f.cellRef(name, local)
	if err != nil {
		return err
	}
	*c = top.cell
	return nil
}

// PushLocalFrame pushes a fresh, zeroed local frame (macro entry, unless
// colon-modified), bounded by maxLocalFrames.
func (f *QFile) PushLocalFrame() error {
	if len(f.locals) >= maxLocalFrames {
		return Fail(ErrMAX, "macro nesting too deep")
	}
	f.locals = append(f.locals, &[36]qcell{})
	return nil
}

// PopLocalFrame pops the current local frame (macro return).
func (f *QFile) PopLocalFrame() {
	if len(f.locals) > 1 {
		f.locals = f.locals[:len(f.locals)-1]
	}
}

// LocalDepth reports how many local frames are active.
func (f *QFile) LocalDepth() int { return len(f.locals) }

// CurrentLocalFrame exposes the top frame pointer for identity comparisons.
func (f *QFile) CurrentLocalFrame() *[36]qcell { return f.locals[len(f.locals)-1] }

// ResetToGlobal discards every local frame but the implicit outermost one,
// used when the main loop unwinds after an uncaught error.
func (f *QFile) ResetToGlobal() {
	f.locals = f.locals[:1]
}
