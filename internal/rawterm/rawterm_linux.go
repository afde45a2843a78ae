// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

// Package rawterm puts stdin into raw mode and provides a RawKeySource that
// reads one key at a time; the host installs it as the engine's Key source.
// We do not use a higher-level terminal library because the engine needs
// single-byte reads with no line buffering or echo at all, not a curses
// screen model.
package rawterm

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"github.com/pkg/term/termios"
)

// Term is a RawKeySource backed by the controlling terminal's stdin,
// switched into raw mode for the lifetime of the editor.
type Term struct {
	fd       uintptr
	saved    syscall.Termios
	restored bool
}

// Open switches stdin to raw mode (no canonical input, no echo, no signal
// characters) and returns a Term reading from it. Call Restore when done.
func Open() (*Term, error) {
	fd := os.Stdin.Fd()
	var saved syscall.Termios
	if err := termios.Tcgetattr(fd, &saved); err != nil {
		return nil, errors.Wrap(err, "Tcgetattr failed")
	}
	raw := saved
	raw.Iflag &^= syscall.BRKINT | syscall.ISTRIP | syscall.IXON | syscall.IXOFF
	raw.Iflag |= syscall.IGNBRK | syscall.IGNPAR
	raw.Lflag &^= syscall.ICANON | syscall.ISIG | syscall.IEXTEN | syscall.ECHO
	raw.Cc[syscall.VMIN] = 1
	raw.Cc[syscall.VTIME] = 0
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &raw); err != nil {
		termios.Tcsetattr(fd, termios.TCSANOW, &saved)
		return nil, errors.Wrap(err, "Tcsetattr failed")
	}
	return &Term{fd: fd, saved: saved}, nil
}

// ReadKey reads a single raw byte from the terminal.
func (t *Term) ReadKey() (byte, error) {
	var buf [1]byte
	n, err := os.Stdin.Read(buf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("short read on stdin")
	}
	return buf[0], nil
}

// Restore puts the terminal back the way Open found it. Safe to call more
// than once.
func (t *Term) Restore() error {
	if t.restored {
		return nil
	}
	t.restored = true
	return termios.Tcsetattr(t.fd, termios.TCSANOW, &t.saved)
}
