// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

// CmdBuf is a growable byte sequence with a read cursor that the scanner
// consumes front-to-back. It also carries the identity of its
// enclosing macro frame so errors can unwind to it.
type CmdBuf struct {
	bytes []byte
	pos   int

	// frame identifies the macro invocation (or 0 for the top-level command
	// line) that owns this buffer, for diagnostics and unwinding.
	frame int
}

// NewCmdBuf wraps a command string for scanning.
func NewCmdBuf(s []byte, frame int) *CmdBuf {
	return &CmdBuf{bytes: s, frame: frame}
}

// Len reports the total length of the buffer.
func (c *CmdBuf) Len() int { return len(c.bytes) }

// Pos reports the current read cursor.
func (c *CmdBuf) Pos() int { return c.pos }

// SetPos resets the read cursor, used by loop restarts and branches.
func (c *CmdBuf) SetPos(p int) { c.pos = p }

// AtEnd reports whether the buffer is exhausted.
func (c *CmdBuf) AtEnd() bool { return c.pos >= len(c.bytes) }

// Peek returns the byte at the cursor without consuming it, or 0 at EOF.
func (c *CmdBuf) Peek() byte {
	if c.AtEnd() {
		return 0
	}
	return c.bytes[c.pos]
}

// PeekAt returns the byte at cursor+n without consuming it, or 0 past EOF.
func (c *CmdBuf) PeekAt(n int) byte {
	p := c.pos + n
	if p < 0 || p >= len(c.bytes) {
		return 0
	}
	return c.bytes[p]
}

// Next consumes and returns the byte at the cursor, or 0 at EOF.
func (c *CmdBuf) Next() byte {
	if c.AtEnd() {
		return 0
	}
	b := c.bytes[c.pos]
	c.pos++
	return b
}

// SkipWhitespace consumes spaces, tabs, CR and LF the way TECO ignores
// whitespace between commands.
func (c *CmdBuf) SkipWhitespace() {
	for !c.AtEnd() {
		switch c.bytes[c.pos] {
		case ' ', '\t', cr, lf:
			c.pos++
		default:
			return
		}
	}
}

// ReadUntil consumes and returns bytes up to (not including) the next
// occurrence of delim, consuming the delimiter too. Used for delimited text
// arguments.
func (c *CmdBuf) ReadUntil(delim byte) ([]byte, error) {
	start := c.pos
	for !c.AtEnd() {
		if c.bytes[c.pos] == delim {
			text := c.bytes[start:c.pos]
			c.pos++
			return text, nil
		}
		c.pos++
	}
	return nil, Fail(ErrUTC, "unterminated text argument")
}

// Remainder returns the unconsumed tail, without consuming it.
func (c *CmdBuf) Remainder() []byte { return c.bytes[c.pos:] }
