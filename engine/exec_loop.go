// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

// findMatchingLoopEnd scans forward from cb's current position, counting
// nested '<'/'>' pairs, and returns the index of the '>' that matches the
// loop the cursor is currently inside.
func (e *Engine) findMatchingLoopEnd(cb *CmdBuf) (int, error) {
	depth := 1
	buf := cb.bytesRange(0, cb.Len())
	pos := cb.Pos()
	for pos < len(buf) {
		switch buf[pos] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return pos, nil
			}
		}
		pos++
	}
	return 0, Fail(ErrBNI, "no matching > for loop")
}

// execLoopStart implements '<': push a loop frame (with an optional
// iteration count n), or skip the whole loop body immediately when n <= 0.
func (e *Engine) execLoopStart(cb *CmdBuf, m mods) error {
	if len(e.loops) >= maxLoopDepth {
		return Fail(ErrMAX, "loop nesting too deep")
	}
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n != nil && *n <= 0 {
		pos, err := e.findMatchingLoopEnd(cb)
		if err != nil {
			return err
		}
		cb.SetPos(pos + 1)
		return nil
	}
	frame := loopFrame{startPos: cb.Pos(), ifDepth: len(e.ifs), iterCount: -1}
	if n != nil {
		frame.hasCount = true
		frame.iterCount = *n
	}
	e.loops = append(e.loops, frame)
	return nil
}

// execLoopEnd implements '>': either restart the loop body or, once the
// iteration count (if any) is exhausted, fall through past the loop.
func (e *Engine) execLoopEnd(cb *CmdBuf, m mods) error {
	if len(e.loops) == 0 {
		return Fail(ErrBNI, "> not in iteration")
	}
	top := &e.loops[len(e.loops)-1]
	if top.hasCount {
		top.iterCount--
		if top.iterCount > 0 {
			cb.SetPos(top.startPos)
			return nil
		}
		e.ifs = e.ifs[:top.ifDepth]
		e.loops = e.loops[:len(e.loops)-1]
		return nil
	}
	cb.SetPos(top.startPos)
	return nil
}

// execSemi implements ';'/'n;'/':;': pop the success/failure value and exit
// the enclosing loop on failure (or on success, if colon-modified).
func (e *Engine) execSemi(cb *CmdBuf, m mods) error {
	if len(e.loops) == 0 {
		return Fail(ErrSNI, "; not in iteration")
	}
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	v := 0
	if n != nil {
		v = *n
	}
	exit := v == 0
	if m.colon {
		exit = !exit
	}
	if !exit {
		return nil
	}
	pos, err := e.findMatchingLoopEnd(cb)
	if err != nil {
		return err
	}
	cb.SetPos(pos + 1)
	top := e.loops[len(e.loops)-1]
	e.ifs = e.ifs[:top.ifDepth]
	e.loops = e.loops[:len(e.loops)-1]
	return nil
}

// scanToDepthZero scans forward from cb's current position, treating '"' as
// depth-increasing and '\'' as depth-decreasing, and returns the first byte
// among stopBytes seen at depth 0 (nested-conditional
// bookkeeping).
func (e *Engine) scanToDepthZero(cb *CmdBuf, stopBytes ...byte) (byte, int, error) {
	depth := 0
	buf := cb.bytesRange(0, cb.Len())
	pos := cb.Pos()
	for pos < len(buf) {
		c := buf[pos]
		switch {
		case c == '"':
			depth++
		case c == '\'' && depth > 0:
			depth--
		case c == '\'' && depth == 0:
			for _, sb := range stopBytes {
				if sb == '\'' {
					return c, pos, nil
				}
			}
			return 0, 0, Fail(ErrMAP, "missing apostrophe")
		case depth == 0:
			for _, sb := range stopBytes {
				if c == sb {
					return c, pos, nil
				}
			}
		}
		pos++
	}
	return 0, 0, Fail(ErrMAP, "missing apostrophe")
}

// condClass implements the `"` command's letter-keyed test classes.
func condClass(class byte, n int) (bool, error) {
	lo := byte(n)
	switch class {
	case 'N', 'n':
		return n != 0, nil
	case 'E', 'e', 'F', 'f':
		return n == 0, nil
	case 'G', 'g':
		return n > 0, nil
	case 'L', 'l':
		return n < 0, nil
	case 'A', 'a':
		return (lo >= 'A' && lo <= 'Z') || (lo >= 'a' && lo <= 'z'), nil
	case 'D', 'd':
		return lo >= '0' && lo <= '9', nil
	case 'C', 'c':
		return (lo >= 'A' && lo <= 'Z') || (lo >= 'a' && lo <= 'z') || (lo >= '0' && lo <= '9') || lo == '.' || lo == '$' || lo == '_', nil
	case 'R', 'r':
		return (lo >= 'A' && lo <= 'Z') || (lo >= 'a' && lo <= 'z') || (lo >= '0' && lo <= '9'), nil
	case 'V', 'v':
		return lo >= 'a' && lo <= 'z', nil
	case 'W', 'w':
		return lo >= 'A' && lo <= 'Z', nil
	case '"':
		return true, nil
	default:
		return false, Failf(ErrILL, "invalid conditional class %q", rune(class))
	}
}

// execIfStart implements '"x': test n against the class selector x and, on
// failure, skip forward to the else-branch or the end of the conditional.
func (e *Engine) execIfStart(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if cb.AtEnd() {
		return Fail(ErrUTC, "unterminated conditional")
	}
	class := cb.Next()
	v := 0
	if n != nil {
		v = *n
	}
	result, err := condClass(class, v)
	if err != nil {
		return err
	}
	e.ifs = append(e.ifs, ifFrame{})
	if result {
		return nil
	}
	stop, pos, err := e.scanToDepthZero(cb, '|', '\'')
	if err != nil {
		return err
	}
	cb.SetPos(pos + 1)
	if stop == '\'' {
		e.ifs = e.ifs[:len(e.ifs)-1]
	}
	return nil
}

// execIfElse implements '|' reached during normal forward execution: the
// true-branch has finished, so skip the else-branch entirely.
func (e *Engine) execIfElse(cb *CmdBuf, m mods) error {
	if len(e.ifs) == 0 {
		return Fail(ErrMSC, "| outside conditional")
	}
	_, pos, err := e.scanToDepthZero(cb, '\'')
	if err != nil {
		return err
	}
	cb.SetPos(pos + 1)
	e.ifs = e.ifs[:len(e.ifs)-1]
	return nil
}

// execIfEnd implements '\'' reached during normal forward execution: close
// the innermost conditional.
func (e *Engine) execIfEnd(cb *CmdBuf, m mods) error {
	if len(e.ifs) == 0 {
		return Fail(ErrMSC, "' outside conditional")
	}
	e.ifs = e.ifs[:len(e.ifs)-1]
	return nil
}
