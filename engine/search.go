// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

// The pattern matcher is deliberately uncompiled: the raw last-search bytes
// are re-walked on every match attempt, because a `^E G q` construct must
// see the Q-register's *current* text, not a snapshot taken when the search
// command was first typed.

const (
	ctrlE = 0x05
	ctrlN = 0x0E
	ctrlQ = 0x11
	ctrlR = 0x12
	ctrlS = 0x13
	ctrlV = 0x16
	ctrlW = 0x17
	ctrlX = 0x18
)

// matchChar tests one edit-buffer byte against the match construct starting
// at pat[*pos], advancing *pos past however many pattern bytes it consumed.
func (e *Engine) matchChar(c byte, pat []byte, pos *int) (bool, error) {
	if *pos >= len(pat) {
		return false, Fail(ErrISS, "invalid search string")
	}
	match := pat[*pos]
	*pos++

	switch match {
	case ctrlE:
		if *pos >= len(pat) {
			return false, Fail(ErrISS, "invalid search string")
		}
		class := upperByte(pat[*pos])
		*pos++
		return e.matchClass(c, class, pat, pos)

	case ctrlN:
		ok, err := e.matchChar(c, pat, pos)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case ctrlQ, ctrlR:
		if *pos >= len(pat) {
			return false, Fail(ErrISS, "invalid search string")
		}
		lit := pat[*pos]
		*pos++
		return c == lit, nil

	case ctrlV:
		// A doubled ^V (^V^V) sets a sticky lowercase-fold mode for every
		// subsequent literal in this call; here we approximate that by
		// folding just the next literal, since each match attempt re-walks
		// the pattern from its start.
		if *pos < len(pat) && pat[*pos] == ctrlV {
			*pos++
		}
		if *pos >= len(pat) {
			return false, Fail(ErrISS, "invalid search string")
		}
		lit := pat[*pos]
		*pos++
		return asciiLower(c) == asciiLower(lit), nil

	case ctrlW:
		if *pos < len(pat) && pat[*pos] == ctrlW {
			*pos++
		}
		if *pos >= len(pat) {
			return false, Fail(ErrISS, "invalid search string")
		}
		lit := pat[*pos]
		*pos++
		return asciiUpper(c) == asciiUpper(lit), nil

	case ctrlS:
		return !isAlnum(c), nil

	case ctrlX:
		return true, nil

	default:
		return foldMatch(c, match, e.Flags.CaseFold), nil
	}
}

func upperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func asciiLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func asciiUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func isAlnum(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// foldMatch compares c against match under the ^X case-fold mode: +1
// case-insensitive; 0 additionally treats the punctuation pairs as
// equivalent; -1 exact.
func foldMatch(c, match byte, mode int) bool {
	if mode == -1 {
		return c == match
	}
	cu, mu := asciiUpper(c), asciiUpper(match)
	if mode == 0 {
		cu = foldPair(cu)
		mu = foldPair(mu)
	}
	return cu == mu
}

// foldPair maps the five punctuation pairs that CTRL/X mode 0 treats as
// equivalent onto a single representative per pair.
func foldPair(c byte) byte {
	switch c {
	case '`':
		return '@'
	case '{':
		return '['
	case '|':
		return '\\'
	case '}':
		return ']'
	case '~':
		return '^'
	default:
		return c
	}
}

// matchClass implements the ^E <letter> / ^E nnn constructs.
func (e *Engine) matchClass(c, class byte, pat []byte, pos *int) (bool, error) {
	switch class {
	case 'A':
		return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'), nil
	case 'B':
		return isBlank(c), nil
	case 'C':
		return isAlnum(c) || c == '.' || c == '$' || c == '_', nil
	case 'D':
		return c >= '0' && c <= '9', nil
	case 'G':
		return e.matchQRegSet(c, pat, pos)
	case 'L':
		return isTerm(c), nil
	case 'R':
		return isAlnum(c), nil
	case 'S':
		return isBlank(c), nil
	case 'V':
		return c >= 'a' && c <= 'z', nil
	case 'W':
		return c >= 'A' && c <= 'Z', nil
	case 'X':
		return true, nil
	default:
		if class >= '0' && class <= '9' {
			n := int(class - '0')
			for *pos < len(pat) && pat[*pos] >= '0' && pat[*pos] <= '9' {
				n = n*10 + int(pat[*pos]-'0')
				*pos++
			}
			return int(c) == n, nil
		}
		return false, Failf(ErrICE, "invalid ^E construct %q", rune(class))
	}
}

// matchQRegSet implements `^E G q`: match if c is any byte of q's text.
func (e *Engine) matchQRegSet(c byte, pat []byte, pos *int) (bool, error) {
	if *pos >= len(pat) {
		return false, Fail(ErrIQN, "missing Q-register name after ^E G")
	}
	name, local, err := e.qRegRefBytes(pat, pos)
	if err != nil {
		return false, err
	}
	text, err := e.QReg.GetText(name, local)
	if err != nil {
		return false, err
	}
	for _, t := range text {
		if t == c {
			return true, nil
		}
	}
	return false, nil
}

// qRegRefBytes is qRegRef's counterpart for reading a Q-register reference
// out of a raw byte slice (the search string) instead of a CmdBuf.
func (e *Engine) qRegRefBytes(pat []byte, pos *int) (name byte, local bool, err error) {
	if *pos < len(pat) && pat[*pos] == '.' {
		local = true
		*pos++
	}
	if *pos >= len(pat) {
		return 0, false, Fail(ErrIQN, "missing Q-register name")
	}
	name = pat[*pos]
	*pos++
	if _, err := getIndex(name); err != nil {
		return 0, false, err
	}
	return name, local, nil
}

// matchAt attempts a full match of pat against the buffer with its first
// character at text position start, always reading forward through the
// buffer regardless of the outer search's direction — only the candidate
// start position decrements between attempts during a backward search, not
// the per-character scan. Returns the matched span
// [lo, hi) on success.
func (e *Engine) matchAt(pat []byte, start int) (lo, hi int, ok bool, err error) {
	pos := 0
	tp := start
	for pos < len(pat) {
		c, present := e.Buf.ByteAt(tp)
		if !present {
			return 0, 0, false, nil
		}
		tp++
		matched, err := e.matchChar(c, pat, &pos)
		if err != nil {
			return 0, 0, false, err
		}
		if !matched {
			return 0, 0, false, nil
		}
	}
	return start, tp, true, nil
}

// searchKind distinguishes how a search behaves at a page boundary.
type searchKind int

const (
	searchS searchKind = iota // within current page only
	searchN                   // non-stop, may advance pages
	searchU                   // non-stop with yank-protection check
	searchE                   // non-stop, no yank-protection check
	searchC                   // compare exact prefix at current position
)

// runSearch drives one search: attempts a match at every
// position between dot and the buffer edge, in the given direction, up to
// count successes; on exhaustion of a non-stop kind it pages and continues.
func (e *Engine) runSearch(pat []byte, direction, count int, kind searchKind) (bool, error) {
	if len(pat) == 0 {
		pat = e.lastSearch
	}
	if len(pat) == 0 {
		return false, Fail(ErrISS, "no search string")
	}
	e.lastSearch = append([]byte(nil), pat...)

	if count <= 0 {
		count = 1
	}

	for {
		pos := e.Buf.Dot()
		end := e.Buf.Z()
		if direction < 0 {
			end = 0
		}
		for {
			if direction > 0 && pos > end {
				break
			}
			if direction < 0 && pos < end {
				break
			}
			lo, hi, ok, err := e.matchAt(pat, pos)
			if err != nil {
				return false, err
			}
			if ok {
				count--
				if count == 0 {
					e.Buf.SetLastMatchLen(hi - lo)
					if direction > 0 {
						e.Buf.SetDot(hi)
					} else {
						e.Buf.SetDot(lo)
					}
					return true, nil
				}
				pos = hi
				if direction < 0 {
					pos = lo - 1
				}
				continue
			}
			pos += direction
		}

		if kind == searchS || kind == searchC {
			return false, nil
		}
		advanced, err := e.advancePage(direction)
		if err != nil {
			return false, err
		}
		if !advanced {
			return false, nil
		}
	}
}

// execS implements S/nS/:S: search forward for the next (or nth) occurrence.
func (e *Engine) execS(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	count := 1
	if n != nil {
		count = *n
	}
	direction := 1
	if count < 0 {
		direction = -1
		count = -count
	}
	ok, err := e.runSearch(text, direction, count, searchS)
	return e.finishSearch(cb, m, ok, err)
}

// execN implements N/nN: non-stop search, paging forward on exhaustion.
func (e *Engine) execN(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	count := 1
	if n != nil {
		count = *n
	}
	direction := 1
	if count < 0 {
		direction = -1
		count = -count
	}
	ok, err := e.runSearch(text, direction, count, searchN)
	return e.finishSearch(cb, m, ok, err)
}

// execCompare implements `_` (compare the text argument against the buffer
// at dot, without moving through the whole page on failure).
func (e *Engine) execCompare(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	_, hi, ok, err := e.matchAt(text, e.Buf.Dot())
	if err != nil {
		return e.finishSearch(cb, m, false, err)
	}
	if ok {
		e.Buf.SetDot(hi)
	}
	return e.finishSearch(cb, m, ok, nil)
}

// finishSearch implements the success/failure policy common to every search
// command: push −1/0 when colon-modified or in a loop, else
// raise a hard SRH error (or let a genuine error propagate).
func (e *Engine) finishSearch(cb *CmdBuf, m mods, ok bool, err error) error {
	if err != nil {
		if _, isTeco := AsError(err); !isTeco {
			return err
		}
	}
	if ok && err == nil {
		if m.colon || len(e.loops) > 0 {
			e.EStack.PushValue(-1)
		}
		return nil
	}
	if m.colon {
		e.EStack.PushValue(0)
		return nil
	}
	if len(e.loops) > 0 {
		e.EStack.PushValue(0)
		pos, ferr := e.findMatchingLoopEnd(cb)
		if ferr != nil {
			return ferr
		}
		cb.SetPos(pos + 1)
		top := e.loops[len(e.loops)-1]
		e.ifs = e.ifs[:top.ifDepth]
		e.loops = e.loops[:len(e.loops)-1]
		return nil
	}
	if err != nil {
		return err
	}
	return Failf(ErrSRH, "%s", e.lastSearch)
}

// advancePage pages forward or backward when a non-stop search exhausts the
// current page; it delegates to the file facade.
func (e *Engine) advancePage(direction int) (bool, error) {
	if e.Files == nil {
		return false, nil
	}
	if direction > 0 {
		return e.pageForward(true)
	}
	return e.pageBackward()
}

// execSearchReplace implements FS: search, then replace the matched span
// with the text that follows the search string.
func (e *Engine) execSearchReplace(cb *CmdBuf, m mods) error {
	return e.searchAndReplace(cb, m, searchS, false)
}

// execSearchReplaceAll implements FN: search and replace, non-stop.
func (e *Engine) execSearchReplaceAll(cb *CmdBuf, m mods) error {
	return e.searchAndReplace(cb, m, searchN, false)
}

// execSearchReplaceGlobal implements F_: like FN but replaces every match
// in the remainder of the buffer rather than just the next one.
func (e *Engine) execSearchReplaceGlobal(cb *CmdBuf, m mods) error {
	return e.searchAndReplace(cb, m, searchN, true)
}

// searchAndReplace implements FS/FN/F_ uniformly ("search →
// delete(−matched_len) → insert(replacement)"), repeating for F_ until a
// search fails.
func (e *Engine) searchAndReplace(cb *CmdBuf, m mods, kind searchKind, global bool) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	pat, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	repl, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	count := 1
	if n != nil {
		count = *n
	}
	direction := 1
	if count < 0 {
		direction = -1
		count = -count
	}
	did := false
	for {
		ok, serr := e.runSearch(pat, direction, count, kind)
		if serr != nil || !ok {
			if global && did {
				return nil
			}
			return e.finishSearch(cb, m, ok, serr)
		}
		matchLen := e.Buf.LastInsertLen()
		if err := e.Buf.Delete(-matchLen); err != nil {
			return err
		}
		if err := e.Buf.Insert(repl); err != nil {
			return err
		}
		did = true
		if !global {
			return e.finishSearch(cb, m, true, nil)
		}
	}
}

// execSearchDeleteBefore implements FD: search, then delete everything from
// the old dot up to the start of the match (discarding the match itself is
// NOT implied — only the text skipped over while searching is deleted).
func (e *Engine) execSearchDeleteBefore(cb *CmdBuf, m mods) error {
	start := e.Buf.Dot()
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	count := 1
	if n != nil {
		count = *n
	}
	direction := 1
	if count < 0 {
		direction = -1
		count = -count
	}
	ok, serr := e.runSearch(text, direction, count, searchS)
	if serr != nil || !ok {
		return e.finishSearch(cb, m, ok, serr)
	}
	matchLen := e.Buf.LastInsertLen()
	matchStart := e.Buf.Dot() - matchLen
	if err := e.deleteRange(start, matchStart); err != nil {
		return err
	}
	return e.finishSearch(cb, m, true, nil)
}

// execSearchDeleteOver implements FK: search, then delete from the old dot
// through the end of the match.
func (e *Engine) execSearchDeleteOver(cb *CmdBuf, m mods) error {
	start := e.Buf.Dot()
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	text, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	count := 1
	if n != nil {
		count = *n
	}
	direction := 1
	if count < 0 {
		direction = -1
		count = -count
	}
	ok, serr := e.runSearch(text, direction, count, searchS)
	if serr != nil || !ok {
		return e.finishSearch(cb, m, ok, serr)
	}
	end := e.Buf.Dot()
	if err := e.deleteRange(start, end); err != nil {
		return err
	}
	return e.finishSearch(cb, m, true, nil)
}

// execSearchBounded implements FB: search only within the next n lines.
func (e *Engine) execSearchBounded(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	text, err := e.readText(cb, m)
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
	bound := e.Buf.Dot() + dist
	ok, serr := e.boundedSearch(text, bound)
	return e.finishSearch(cb, m, ok, serr)
}

// execSearchBoundedReplace implements FC: bounded search, then replace.
func (e *Engine) execSearchBoundedReplace(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	pat, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	repl, err := e.readText(cb, m)
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
	bound := e.Buf.Dot() + dist
	start := e.Buf.Dot()
	lo, hi, ok, err := e.boundedSearchSpan(pat, start, bound)
	if err != nil || !ok {
		return e.finishSearch(cb, m, ok, err)
	}
	if err := e.deleteRange(lo, hi); err != nil {
		return err
	}
	e.Buf.SetDot(lo)
	if err := e.Buf.Insert(repl); err != nil {
		return err
	}
	return e.finishSearch(cb, m, true, nil)
}

func (e *Engine) boundedSearch(pat []byte, bound int) (bool, error) {
	_, _, ok, err := e.boundedSearchSpan(pat, e.Buf.Dot(), bound)
	return ok, err
}

func (e *Engine) boundedSearchSpan(pat []byte, start, bound int) (lo, hi int, ok bool, err error) {
	if len(pat) == 0 {
		pat = e.lastSearch
	}
	if len(pat) == 0 {
		return 0, 0, false, Fail(ErrISS, "no search string")
	}
	e.lastSearch = append([]byte(nil), pat...)
	direction := 1
	if bound < start {
		direction = -1
	}
	pos := start
	for {
		if direction > 0 && pos > bound {
			return 0, 0, false, nil
		}
		if direction < 0 && pos < bound {
			return 0, 0, false, nil
		}
		lo, hi, ok, err = e.matchAt(pat, pos)
		if err != nil {
			return 0, 0, false, err
		}
		if ok {
			e.Buf.SetDot(hi)
			return lo, hi, true, nil
		}
		pos += direction
	}
}

// execSearchReplaceLast implements FR: replace the most recent match (the
// span recorded via lastInsertLen) with new text, without searching again.
func (e *Engine) execSearchReplaceLast(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	repl, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	matchLen := e.Buf.LastInsertLen()
	if matchLen == 0 {
		return Fail(ErrSRH, "no prior match to replace")
	}
	if err := e.Buf.Delete(-matchLen); err != nil {
		return err
	}
	return e.colonGuard(m.colon, e.Buf.Insert(repl))
}
