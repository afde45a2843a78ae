// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

// Package outsink wraps an io.Writer so a broken stdout (closed pipe,
// full disk) is reported once instead of on every subsequent type-out.
package outsink

import (
	"io"

	"github.com/pkg/errors"
)

// Sink wraps a writer and remembers its first error, returning it on every
// later call instead of writing again.
type Sink struct {
	w   io.Writer
	Err error
}

func (s *Sink) Write(p []byte) (n int, err error) {
	if s.Err != nil {
		return 0, s.Err
	}
	n, err = s.w.Write(p)
	if err != nil {
		s.Err = errors.Wrap(err, "write failed")
	}
	return n, s.Err
}

// New wraps w as a Sink.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}
