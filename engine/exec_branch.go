// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import (
	"bytes"
	"strings"
)

// execTagDef implements "!tag!" reached during normal forward execution: it
// is a pure marker, so just consume it.
func (e *Engine) execTagDef(cb *CmdBuf, m mods) error {
	_, err := cb.ReadUntil('!')
	return err
}

// execBranch implements "O tag" and "nO a,b,...,z".
func (e *Engine) execBranch(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	tag := string(text)
	if n != nil {
		parts := strings.Split(tag, ",")
		idx := *n
		if idx < 1 || idx > len(parts) {
			return nil // out of range: falls through with no branch
		}
		tag = strings.TrimSpace(parts[idx-1])
	}
	return e.branchToTag(cb, tag)
}

// branchToTag jumps to "!tag!", searching forward from the cursor first,
// then from the start of the buffer.
func (e *Engine) branchToTag(cb *CmdBuf, tag string) error {
	if tag == "" {
		return Fail(ErrBAT, "empty tag name")
	}
	needle := []byte("!" + tag + "!")
	buf := cb.bytesRange(0, cb.Len())

	if pos := bytes.Index(buf[cb.Pos():], needle); pos >= 0 {
		cb.SetPos(cb.Pos() + pos + len(needle))
		return nil
	}
	if pos := bytes.Index(buf[:cb.Pos()], needle); pos >= 0 {
		cb.SetPos(pos + len(needle))
		return nil
	}
	return Failf(ErrTAG, "tag %q not found", tag)
}

// execFFamily implements the F-prefixed flow-control and search-and-replace
// commands: F>, F<, F', F| redirect control flow; FS,
// FN, F_, FD, FK, FB, FC, FR are search variants; FL, FU fold case.
func (e *Engine) execFFamily(cb *CmdBuf, m mods) error {
	if cb.AtEnd() {
		return Fail(ErrUTC, "unterminated F command")
	}
	b := cb.Next()
	switch b {
	case '>':
		pos, err := e.findMatchingLoopEnd(cb)
		if err != nil {
			return err
		}
		cb.SetPos(pos)
		return nil
	case '<':
		if len(e.loops) == 0 {
			return Fail(ErrBNI, "F< not in iteration")
		}
		cb.SetPos(e.loops[len(e.loops)-1].startPos)
		return nil
	case '\'':
		if len(e.ifs) == 0 {
			return Fail(ErrMSC, "F' outside conditional")
		}
		_, pos, err := e.scanToDepthZero(cb, '\'')
		if err != nil {
			return err
		}
		cb.SetPos(pos)
		return nil
	case '|':
		if len(e.ifs) == 0 {
			return Fail(ErrMSC, "F| outside conditional")
		}
		_, pos, err := e.scanToDepthZero(cb, '|', '\'')
		if err != nil {
			return err
		}
		cb.SetPos(pos)
		return nil
	case 'S', 's':
		return e.execSearchReplace(cb, m)
	case 'N', 'n':
		return e.execSearchReplaceAll(cb, m)
	case '_':
		return e.execSearchReplaceGlobal(cb, m)
	case 'D', 'd':
		return e.execSearchDeleteBefore(cb, m)
	case 'K', 'k':
		return e.execSearchDeleteOver(cb, m)
	case 'B', 'b':
		return e.execSearchBounded(cb, m)
	case 'C', 'c':
		return e.execSearchBoundedReplace(cb, m)
	case 'R', 'r':
		return e.execSearchReplaceLast(cb, m)
	case 'L', 'l':
		return e.caseConvert(cb, m, false)
	case 'U', 'u':
		return e.caseConvert(cb, m, true)
	default:
		return Failf(ErrILL, "unrecognised F command %q", rune(b))
	}
}

// caseConvert implements FL/FU: fold the case of n lines (default the
// current line, or the absolute range m,n) in place.
func (e *Engine) caseConvert(cb *CmdBuf, m mods, upper bool) error {
	mm, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	var from, to int
	switch {
	case mm != nil && n != nil:
		from, to = *mm, *n
	default:
		count := 1
		if n != nil {
			count = *n
		}
		dist, err := e.Buf.LenToLine(count)
		if err != nil {
			return err
		}
		from, to = e.Buf.Dot(), e.Buf.Dot()+dist
	}
	if from > to {
		from, to = to, from
	}
	data := e.Buf.Range(from, to)
	for i, c := range data {
		if upper {
			if c >= 'a' && c <= 'z' {
				data[i] = c - ('a' - 'A')
			}
		} else {
			if c >= 'A' && c <= 'Z' {
				data[i] = c + ('a' - 'A')
			}
		}
	}
	return e.Buf.SetRange(from, to, data)
}
