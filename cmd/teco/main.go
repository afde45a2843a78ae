// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/fpjohnston/TECO-64-sub001/engine"
	"github.com/fpjohnston/TECO-64-sub001/internal/outsink"
	"github.com/fpjohnston/TECO-64-sub001/internal/rawterm"
)

// cliOptions holds the command-line flags, parsed with go-flags the way
// peco's options.go does it.
type cliOptions struct {
	NoRawIO bool   `long:"noraw" description:"disable raw terminal IO"`
	Execute string `short:"e" long:"execute" description:"execute command string and exit"`
	LogFile string `long:"log" description:"append a copy of all output to filename"`
	NoPage  bool   `long:"nopage" description:"use the 1 MiB edit buffer limit instead of 1 GiB (form feeds still separate input pages)"`
}

func atExit(err error) {
	if err == nil || engine.IsExit(err) {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%v\n", err)
	os.Exit(1)
}

func main() {
	var opts cliOptions
	args, err := flags.NewParser(&opts, flags.Default).Parse()
	if err != nil {
		os.Exit(1)
	}

	buffered := bufio.NewWriter(os.Stdout)
	defer buffered.Flush()
	sink := outsink.New(buffered)

	e := engine.New(!opts.NoPage)
	e.Out = sink

	var term *rawterm.Term
	if !opts.NoRawIO {
		term, err = rawterm.Open()
		if err == nil {
			e.Key = term
			defer term.Restore()
		}
	}

	if opts.LogFile != "" {
		if err := e.Run([]byte("EL" + opts.LogFile + "\x1b")); err != nil {
			atExit(err)
			return
		}
	}

	if opts.Execute != "" {
		err = e.Run([]byte(opts.Execute))
		atExit(err)
		return
	}

	for _, name := range args {
		f, oerr := os.Open(name)
		if oerr != nil {
			atExit(oerr)
			return
		}
		src, rerr := io.ReadAll(f)
		f.Close()
		if rerr != nil {
			atExit(rerr)
			return
		}
		if err = e.Run(src); err != nil {
			break
		}
	}
	atExit(err)

	if len(args) == 0 && opts.Execute == "" {
		runInteractive(e, sink)
	}
}

// runInteractive reads one line at a time from stdin and executes it as a
// top-level TECO command string, printing uncaught errors and resetting
// engine state between commands.
func runInteractive(e *engine.Engine, out io.Writer) {
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if err := e.Run(in.Bytes()); err != nil {
			if engine.IsExit(err) {
				return
			}
			fmt.Fprintf(out, "%v\n", err)
			e.ResetForError()
		}
	}
}
