// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

// colonGuard implements the colon-modified "catch and push 0/−1" policy:
// on success, a colon-modified command pushes −1; on a *Error failure, it
// pushes 0 instead of propagating; any other command, or any non-TECO
// error, propagates normally.
func (e *Engine) colonGuard(colon bool, err error) error {
	if err == nil {
		if colon {
			e.EStack.PushValue(-1)
		}
		return nil
	}
	if colon {
		if _, ok := AsError(err); ok {
			e.EStack.PushValue(0)
			return nil
		}
	}
	return err
}

// execA implements A/nA: with no n, append the next line from
// the current input stream; with n, push the byte at dot+n.
func (e *Engine) execA(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n == nil {
		return e.appendLine()
	}
	e.EStack.PushValue(e.Buf.ReadRelative(*n))
	return nil
}

// appendLine pulls one more line of text from the current input stream (if
// any) into the end of the edit buffer paging model.
func (e *Engine) appendLine() error {
	in := e.Files.Primary()
	if in == nil {
		return Fail(ErrNFI, "no input file open")
	}
	line, ok := in.NextLine()
	if !ok {
		return nil
	}
	dot := e.Buf.Dot()
	e.Buf.SetDot(e.Buf.Z())
	err := e.Buf.Insert(line)
	e.Buf.SetDot(dot)
	return err
}

// execC implements C/nC: move dot forward by n (default 1) bytes.
func (e *Engine) execC(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	delta := 1
	if n != nil {
		delta = *n
	}
	return e.moveClamped(delta, m.colon)
}

// execR implements R/nR: move dot backward by n (default 1) bytes.
func (e *Engine) execR(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	delta := 1
	if n != nil {
		delta = *n
	}
	return e.moveClamped(-delta, m.colon)
}

func (e *Engine) moveClamped(delta int, colon bool) error {
	target := e.Buf.Dot() + delta
	if target < 0 || target > e.Buf.Z() {
		return e.colonGuard(colon, Fail(ErrPOP, "pointer moved off page"))
	}
	e.Buf.MoveDot(delta)
	return e.colonGuard(colon, nil)
}

// execJ implements J/nJ: absolute move to n (default 0).
func (e *Engine) execJ(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	target := 0
	if n != nil {
		target = *n
	}
	if target < 0 || target > e.Buf.Z() {
		return e.colonGuard(m.colon, Fail(ErrPOP, "pointer moved off page"))
	}
	e.Buf.SetDot(target)
	return e.colonGuard(m.colon, nil)
}

// execL implements L/nL (move by n lines) and :L (push the current line
// number instead of moving).
func (e *Engine) execL(cb *CmdBuf, m mods) error {
	if m.colon {
		e.EStack.PushValue(e.Buf.Line())
		return nil
	}
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
	e.Buf.MoveDot(dist)
	return nil
}

// execD implements D/nD (delete n bytes forward/backward at dot) and
// m,nD (delete the absolute range [m, n)).
func (e *Engine) execD(cb *CmdBuf, m mods) error {
	mm, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if mm != nil && n != nil {
		return e.colonGuard(m.colon, e.deleteRange(*mm, *n))
	}
	count := 1
	if n != nil {
		count = *n
	}
	return e.colonGuard(m.colon, e.Buf.Delete(count))
}

func (e *Engine) deleteRange(from, to int) error {
	if from > to {
		from, to = to, from
	}
	dot := e.Buf.Dot()
	e.Buf.SetDot(from)
	err := e.Buf.Delete(to - from)
	if err != nil {
		e.Buf.SetDot(dot)
		return err
	}
	return nil
}

// execK implements K/nK (kill n lines forward/backward) and m,nK (kill the
// absolute range [m, n), e.g. via HK to kill the whole buffer).
func (e *Engine) execK(cb *CmdBuf, m mods) error {
	mm, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if mm != nil && n != nil {
		return e.colonGuard(m.colon, e.deleteRange(*mm, *n))
	}
	count := 1
	if n != nil {
		count = *n
	}
	dist, err := e.Buf.LenToLine(count)
	if err != nil {
		return err
	}
	if dist == 0 {
		return nil
	}
	if dist > 0 {
		return e.colonGuard(m.colon, e.Buf.Delete(dist))
	}
	return e.colonGuard(m.colon, e.Buf.Delete(dist))
}

// execT implements T/nT (type n lines, default 1, starting at dot) and
// m,nT (type the absolute byte range [m, n), e.g. via HT to type the whole
// buffer), the same m,n-vs-count split as D/K.
func (e *Engine) execT(cb *CmdBuf, m mods) error {
	mm, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if mm != nil && n != nil {
		from, to := *mm, *n
		if from > to {
			from, to = to, from
		}
		return e.writeOut(e.Buf.Range(from, to))
	}
	count := 1
	if n != nil {
		count = *n
	}
	return e.typeLines(count)
}

// execV implements V/nV: type lines of context symmetric around dot.
func (e *Engine) execV(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	count := 0
	if n != nil {
		count = *n
	}
	if err := e.typeLinesRange(-count, count); err != nil {
		return err
	}
	return nil
}

func (e *Engine) typeLines(n int) error {
	if n >= 0 {
		return e.typeLinesRange(0, n)
	}
	return e.typeLinesRange(n, 0)
}

func (e *Engine) typeLinesRange(back, forward int) error {
	from, err := e.Buf.LenToLine(back)
	if err != nil {
		return err
	}
	to, err := e.Buf.LenToLine(forward)
	if err != nil {
		return err
	}
	lo, hi := e.Buf.Dot()+from, e.Buf.Dot()+to
	if lo > hi {
		lo, hi = hi, lo
	}
	return e.writeOut(e.Buf.Range(lo, hi))
}

// execI implements I<text>$ (insert the delimited text) and nI (insert a
// single byte with code n).
func (e *Engine) execI(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n != nil {
		return e.Buf.Insert([]byte{byte(*n)})
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	return e.Buf.Insert(NormalizeInput(text, false))
}
