// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import (
	"strconv"
	"time"
)

// execP implements P/nP/PW/:P: write the current page out (if an output
// file is open) and advance to the next page of input. The
// trailing W just requests an immediate flush of that write, which the
// engine's writeBytes already does on every call, so it is accepted and
// otherwise ignored. n repeats the advance n times; :P reports
// success/failure instead of raising a hard error when input is exhausted.
func (e *Engine) execP(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if !cb.AtEnd() && (cb.Peek() == 'W' || cb.Peek() == 'w') {
		cb.Next()
	}
	count := 1
	if n != nil {
		count = *n
	}
	var ok bool
	for i := 0; i < count; i++ {
		ok, err = e.pageForward(true)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	if ok {
		return e.colonGuard(m.colon, nil)
	}
	return e.colonGuard(m.colon, Fail(ErrNFI, "no more pages of input"))
}

// execY implements Y: yank the next page without writing, subject to
// yank-protection. EY bypasses the protection check; both
// land here via the yank parameter.
func (e *Engine) execY(cb *CmdBuf, m mods) error {
	return e.yank(cb, m, true)
}

func (e *Engine) yank(cb *CmdBuf, m mods, protect bool) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	if protect && e.Flags.YankProtected() && e.Files.out[e.Files.ostream] != nil {
		return e.colonGuard(m.colon, Fail(ErrYCA, "Y command aborted"))
	}
	ok, err := e.pageForward(false)
	if err != nil {
		return err
	}
	if !ok {
		return e.colonGuard(m.colon, Fail(ErrNFI, "no more pages of input"))
	}
	return e.colonGuard(m.colon, nil)
}

// execEY implements EY: yank without the yank-protection check.
func (e *Engine) execEY(cb *CmdBuf, m mods) error {
	return e.yank(cb, m, false)
}

// execBackslash implements `\`: with no n, convert the digit string at dot
// (under the current radix) to a value and push it, advancing dot past the
// digits; with n, insert n's text representation at dot.
func (e *Engine) execBackslash(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n != nil {
		s := strconv.FormatInt(int64(*n), e.Flags.Radix)
		return e.Buf.Insert([]byte(s))
	}
	start := e.Buf.Dot()
	neg := false
	if c, ok := peekByteAt(e.Buf, start); ok && (c == '+' || c == '-') {
		neg = c == '-'
		start++
	}
	v := 0
	pos := start
	for {
		c, ok := peekByteAt(e.Buf, pos)
		if !ok || !e.Flags.isDigit(c) {
			break
		}
		v = v*e.Flags.Radix + int(c-'0')
		pos++
	}
	if pos == start {
		return Fail(ErrIIA, "no digit string at dot")
	}
	if neg {
		v = -v
	}
	e.Buf.SetDot(pos)
	e.EStack.PushValue(v)
	return nil
}

func peekByteAt(b *Buffer, pos int) (byte, bool) {
	return b.ByteAt(pos)
}

// execCaret implements the `^x` control-command family: date/time queries,
// yank-span/search-length introspection, Q-register text assignment, ASCII
// lookup and the case/radix mode flags.
func (e *Engine) execCaret(cb *CmdBuf, m mods) error {
	if cb.AtEnd() {
		return Fail(ErrUTC, "unterminated ^ command")
	}
	b := cb.Next()
	switch b {
	case 'B', 'b':
		e.EStack.PushValue(currentDateCode())
		return nil
	case 'H', 'h':
		e.EStack.PushValue(currentMillisSinceMidnight())
		return nil
	case 'Y', 'y':
		dot := e.Buf.Dot()
		e.pendingM = intPtr(dot - e.Buf.LastInsertLen())
		e.EStack.PushValue(dot)
		return nil
	case 'Q', 'q':
		_, n, err := e.bindArgs()
		if err != nil {
			return err
		}
		count := 1
		if n != nil {
			count = *n
		}
		dist, err := e.Buf.LenToLine(count)
		if err != nil {
			return err
		}
		e.EStack.PushValue(dist)
		return nil
	case 'S', 's':
		e.EStack.PushValue(-e.Buf.LastInsertLen())
		return nil
	case 'Z', 'z':
		e.EStack.PushValue(e.QReg.TotalQSize())
		return nil
	case 'U', 'u':
		return e.execCtrlU(cb, m)
	case '^':
		if cb.AtEnd() {
			return Fail(ErrUTC, "unterminated ^^ command")
		}
		e.EStack.PushValue(int(cb.Next()))
		return nil
	case 'X', 'x':
		_, n, err := e.bindArgs()
		if err != nil {
			return err
		}
		if n == nil {
			e.EStack.PushValue(e.Flags.CaseFold)
			return nil
		}
		e.Flags.CaseFold = *n
		return nil
	case 'R', 'r':
		_, n, err := e.bindArgs()
		if err != nil {
			return err
		}
		if n == nil {
			e.EStack.PushValue(e.Flags.Radix)
			return nil
		}
		if *n != 8 && *n != 10 && *n != 16 {
			return Fail(ErrIFE, "invalid radix")
		}
		e.Flags.Radix = *n
		return nil
	default:
		return Failf(ErrILL, "unrecognised ^ command %q", rune(b))
	}
}

// execCtrlU implements ^Uq text / n^Uq: set a Q-register's text wholesale,
// or (with n) its text to a single byte.
func (e *Engine) execCtrlU(cb *CmdBuf, m mods) error {
	name, local, err := e.qRegRef(cb)
	if err != nil {
		return err
	}
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n != nil {
		if *n < 0 || *n > 255 {
			return Fail(ErrIUC, "invalid character following ^U")
		}
		return e.QReg.StoreText(name, local, []byte{byte(*n)})
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	if m.colon {
		return e.QReg.AppendText(name, local, text)
	}
	return e.QReg.StoreText(name, local, text)
}

func currentDateCode() int {
	now := time.Now()
	return (now.Year()-1900)*10000 + int(now.Month())*100 + now.Day()
}

func currentMillisSinceMidnight() int {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(now.Sub(midnight).Milliseconds())
}
