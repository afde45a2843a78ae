// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// streamCount is the number of input/output streams tracked: primary and
// secondary, switchable by the user.
const streamCount = 2

// inStream is one open input file, paged through a pager the same way
// page.go models ahead/behind queues.
type inStream struct {
	name  string
	pager *pager
}

// NextLine pulls the next line (up to and including its terminator, or the
// final unterminated fragment) out of the current page, crossing into the
// next queued page transparently.
func (s *inStream) NextLine() ([]byte, bool) {
	if s == nil || s.pager == nil {
		return nil, false
	}
	for {
		if len(s.pager.ahead) == 0 {
			return nil, false
		}
		pg := &s.pager.ahead[0]
		if len(pg.data) == 0 {
			s.pager.ahead = s.pager.ahead[1:]
			continue
		}
		i := 0
		for i < len(pg.data) && !isTerm(pg.data[i]) {
			i++
		}
		if i < len(pg.data) {
			i++
		}
		line := pg.data[:i]
		pg.data = pg.data[i:]
		return line, true
	}
}

// outStream is one open output file: either a real OS file (via a
// temp-file-then-rename discipline) or a Q-register text sink (mode '%').
type outStream struct {
	name     string
	mode     byte // 'B' backup, 'W' write, 'L' log, '%' Q-register
	backup   bool
	f        *os.File
	tempPath string
	qName    byte
	qLocal   bool
}

// FileSystem is the engine's facade over the host filesystem:
// two input streams, two output streams (either of which may hold an E%
// Q-register output), a separate log stream sharing the same outStream
// shape, and EN wildcard iteration.
type FileSystem struct {
	in       [streamCount]*inStream
	out      [streamCount]*outStream
	logOut   *outStream
	primary  int // active input stream index
	ostream  int // active output stream index
	wildList []string
	wildPos  int
}

// NewFileSystem returns a facade with no files open.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// Primary returns the active input stream, or nil if none is open.
func (fs *FileSystem) Primary() *inStream {
	if fs == nil {
		return nil
	}
	return fs.in[fs.primary]
}

// openInput reads the whole file eagerly rather than streaming it, and
// pages the result.
func (fs *FileSystem) openInput(name string, stream int, noPage bool) error {
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return Failf(ErrFNF, "%s", name)
		}
		return Wrap(ErrERR, name, err)
	}
	p := newPager(false, noPage)
	p.load(NormalizeInput(data, false))
	fs.in[stream] = &inStream{name: name, pager: p}
	return nil
}

// closeInput closes and forgets the given input stream.
func (fs *FileSystem) closeInput(stream int) {
	fs.in[stream] = nil
}

// openOutput opens a file for output. mode 'W' opens a fresh
// temp file alongside any pre-existing file of the same name (renamed into
// place on close); mode 'B' is the same but keeps the original as name~;
// mode 'L' appends directly, no temp-file dance; mode '%' routes bytes into
// a Q-register's text instead of the filesystem.
func (fs *FileSystem) openOutput(name string, stream int, mode byte) error {
	out := &outStream{name: name, mode: mode, backup: mode == 'B'}
	switch mode {
	case '%':
		fs.out[stream] = out
		return nil
	case 'L':
		f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return Wrap(ErrERR, name, err)
		}
		out.f = f
		fs.logOut = out
		return nil
	default: // 'W', 'B'
		if _, err := os.Stat(name); err == nil {
			tmp, err := os.CreateTemp(filepath.Dir(name), "_teco_")
			if err != nil {
				return Wrap(ErrERR, name, err)
			}
			out.f = tmp
			out.tempPath = tmp.Name()
		} else {
			f, err := os.Create(name)
			if err != nil {
				return Wrap(ErrERR, name, err)
			}
			out.f = f
		}
		fs.out[stream] = out
		return nil
	}
}

// closeOutput finalises the stream: a temp file is renamed into place,
// backing up the original to name~ first if requested.
func (fs *FileSystem) closeOutput(stream int) error {
	out := fs.out[stream]
	if out == nil {
		return Fail(ErrNFO, "no output file open")
	}
	fs.out[stream] = nil
	if out.mode == '%' {
		return nil
	}
	if out.f != nil {
		if err := out.f.Close(); err != nil {
			return Wrap(ErrERR, out.name, err)
		}
	}
	if out.tempPath == "" {
		return nil
	}
	if out.backup {
		if err := os.Rename(out.name, out.name+"~"); err != nil {
			return Wrap(ErrERR, out.name, err)
		}
	} else if err := os.Remove(out.name); err != nil {
		return Wrap(ErrERR, out.name, err)
	}
	if err := os.Rename(out.tempPath, out.name); err != nil {
		return Wrap(ErrERR, out.name, err)
	}
	return nil
}

// discardOutput implements EK: close and delete the temp file, leaving any
// pre-existing file of the same name untouched.
func (fs *FileSystem) discardOutput(stream int) error {
	out := fs.out[stream]
	if out == nil {
		return Fail(ErrNFO, "no output file open")
	}
	fs.out[stream] = nil
	if out.f != nil {
		out.f.Close()
	}
	if out.tempPath != "" {
		os.Remove(out.tempPath)
	}
	return nil
}

// writeBytes appends to the given output stream.
func (fs *FileSystem) writeBytes(stream int, data []byte) error {
	out := fs.out[stream]
	if out == nil {
		return Fail(ErrNFO, "no output file open")
	}
	if out.f == nil {
		return nil
	}
	if _, err := out.f.Write(data); err != nil {
		return Wrap(ErrERR, out.name, err)
	}
	return nil
}

// setWild and nextWild implement the EN command's wildcard iteration.
func (fs *FileSystem) setWild(glob string) (bool, error) {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return false, Wrap(ErrIFN, glob, err)
	}
	fs.wildList = matches
	fs.wildPos = 0
	return len(matches) > 0, nil
}

func (fs *FileSystem) nextWild() (string, bool) {
	if fs.wildPos >= len(fs.wildList) {
		return "", false
	}
	name := fs.wildList[fs.wildPos]
	fs.wildPos++
	return name, true
}

// runExternal implements EG: run a command, split on whitespace and started
// directly without a shell, optionally capturing its standard output (EZ).
func runExternal(command string, captureOutput bool) (string, int, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", 0, Fail(ErrIFN, "empty command")
	}
	cmd := exec.Command(parts[0], parts[1:]...)
	var out []byte
	var err error
	if captureOutput {
		out, err = cmd.Output()
	} else {
		err = cmd.Run()
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), exitErr.ExitCode(), nil
		}
		return "", -1, Wrap(ErrSYS, command, err)
	}
	return string(out), 0, nil
}

// pageForward yanks the next queued page of the primary input into the edit
// buffer, writing out the page being displaced first if an output file is
// open.
func (e *Engine) pageForward(writeOld bool) (bool, error) {
	in := e.Files.Primary()
	if in == nil || in.pager == nil || !in.pager.hasNext() {
		return false, nil
	}
	if writeOld && e.Files.out[e.Files.ostream] != nil {
		if err := e.Files.writeBytes(e.Files.ostream, e.Buf.Bytes()); err != nil {
			return false, err
		}
	}
	old := page{data: e.Buf.Bytes()}
	in.pager.pushBehind(old)
	pg, ok := in.pager.next()
	if !ok {
		return false, nil
	}
	e.Buf.Kill()
	if err := e.Buf.Insert(pg.data); err != nil {
		return false, err
	}
	e.Buf.SetDot(0)
	return true, nil
}

// pageBackward restores the most recently yanked-out page, only valid when
// virtual (backward) paging is enabled.
func (e *Engine) pageBackward() (bool, error) {
	in := e.Files.Primary()
	if in == nil || in.pager == nil {
		return false, nil
	}
	pg, ok := in.pager.prev()
	if !ok {
		return false, nil
	}
	in.pager.pushAheadFront(page{data: e.Buf.Bytes()})
	e.Buf.Kill()
	if err := e.Buf.Insert(pg.data); err != nil {
		return false, err
	}
	e.Buf.SetDot(0)
	return true, nil
}

// execEFamily dispatches the E-prefixed file and flag commands.
func (e *Engine) execEFamily(cb *CmdBuf, m mods) error {
	if cb.AtEnd() {
		return Fail(ErrUTC, "unterminated E command")
	}
	b := cb.Next()
	switch b {
	case 'R', 'r':
		return e.execER(cb, m)
	case 'W', 'w':
		return e.execEW(cb, m, 'W')
	case 'B', 'b':
		return e.execEW(cb, m, 'B')
	case 'F', 'f':
		return e.execEF(cb, m)
	case 'C', 'c':
		return e.execEC(cb, m)
	case 'K', 'k':
		return e.execEK(cb, m)
	case 'X', 'x':
		return e.execEX(cb, m)
	case 'I', 'i':
		return e.execEI(cb, m)
	case 'G', 'g':
		return e.execEG(cb, m)
	case 'Z', 'z':
		return e.execEZ(cb, m)
	case 'N', 'n':
		return e.execEN(cb, m)
	case 'O', 'o':
		return e.execEO(cb, m)
	case 'Q', 'q':
		return e.execEQ(cb, m)
	case '%':
		return e.execEPct(cb, m)
	case 'L', 'l':
		return e.execEL(cb, m)
	case 'Y', 'y':
		return e.execEY(cb, m)
	case 'D', 'd':
		return e.execFlagGetSet(cb, m, &e.Flags.ED)
	case 'E', 'e':
		return e.execFlagGetSet(cb, m, &e.Flags.EE)
	case 'H', 'h':
		return e.execFlagGetSet(cb, m, &e.Flags.EH)
	case 'S', 's':
		return e.execFlagGetSet(cb, m, &e.Flags.ES)
	case 'T', 't':
		return e.execFlagGetSet(cb, m, &e.Flags.ET)
	case 'U', 'u':
		return e.execFlagGetSet(cb, m, &e.Flags.EU)
	case 'V', 'v':
		return e.execFlagGetSet(cb, m, &e.Flags.EV)
	case '1':
		return e.execFlagGetSet(cb, m, &e.Flags.E1)
	case '2':
		return e.execFlagGetSet(cb, m, &e.Flags.E2)
	case '3':
		return e.execFlagGetSet(cb, m, &e.Flags.E3)
	case '4':
		return e.execFlagGetSet(cb, m, &e.Flags.E4)
	default:
		return Failf(ErrILL, "unrecognised E command %q", rune(b))
	}
}

// execFlagGetSet implements the common shape of the get/set flag commands
// (ED/ES/ET/EU/EV/EH/E1..E4): with no n, push the current value; with n,
// store it.
func (e *Engine) execFlagGetSet(cb *CmdBuf, m mods, flag *int) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n == nil {
		e.EStack.PushValue(*flag)
		return nil
	}
	*flag = *n
	return nil
}

// execER implements ER: open a file for input on the given stream
// (secondary if colon-modified).
func (e *Engine) execER(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	name, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	stream := 0
	if m.colon {
		stream = 1
	}
	if len(name) == 0 {
		e.Files.closeInput(stream)
		return nil
	}
	if stream == 0 {
		e.lastFilename = string(name)
	}
	return e.colonGuard(m.colon, e.Files.openInput(string(name), stream, e.Buf.NoPage()))
}

// execEW implements EW/EB: open a file for output, mode W or B.
func (e *Engine) execEW(cb *CmdBuf, m mods, mode byte) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	name, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	stream := 0
	if m.colon {
		stream = 1
	}
	e.Files.ostream = stream
	return e.colonGuard(m.colon, e.Files.openOutput(string(name), stream, mode))
}

// execEF implements EF: close output without flushing the current buffer.
func (e *Engine) execEF(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	return e.colonGuard(m.colon, e.Files.closeOutput(e.Files.ostream))
}

// execEC implements EC: write the current edit buffer to output and close,
// or (with n) resize the edit buffer. Input pages not yet read are not
// copied to the output.
func (e *Engine) execEC(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n != nil {
		return e.Buf.SizeEdit(*n * 1024)
	}
	if err := e.Files.writeBytes(e.Files.ostream, e.Buf.Bytes()); err != nil {
		return err
	}
	return e.colonGuard(m.colon, e.Files.closeOutput(e.Files.ostream))
}

// execEK implements EK: discard the output file being built.
func (e *Engine) execEK(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	return e.colonGuard(m.colon, e.Files.discardOutput(e.Files.ostream))
}

// execEX implements EX: flush, close, and signal the host to exit.
func (e *Engine) execEX(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	if e.Files.out[e.Files.ostream] != nil {
		if err := e.Files.writeBytes(e.Files.ostream, e.Buf.Bytes()); err != nil {
			return err
		}
		if err := e.Files.closeOutput(e.Files.ostream); err != nil {
			return err
		}
	}
	return errExit
}

// errExit is a sentinel *Error the host CLI recognises as a clean EX, not a
// failure.
var errExit = Fail(ErrCFG, "EX").(*Error)

// IsExit reports whether err is the EX sentinel.
func IsExit(err error) bool {
	e, ok := AsError(err)
	return ok && e == errExit
}

// execEI implements EI: run an indirect command file as a nested buffer,
// the same way Mq invokes a Q-register's text.
func (e *Engine) execEI(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	name, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	data, rerr := os.ReadFile(string(name))
	if rerr != nil {
		return Wrap(ErrFNF, string(name), rerr)
	}
	child := NewCmdBuf(data, e.nextFrameID)
	e.nextFrameID++
	e.macros = append(e.macros, macroFrame{buf: cb, loopDepth: len(e.loops), ifDepth: len(e.ifs)})
	e.cmdStack = append(e.cmdStack, child)
	return nil
}

// execEG implements EG: run an external command, returning its exit status
// when colon-modified.
func (e *Engine) execEG(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	command, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	_, status, rerr := runExternal(string(command), false)
	if rerr != nil {
		return e.colonGuard(m.colon, rerr)
	}
	if m.colon {
		e.EStack.PushValue(status)
	}
	return nil
}

// execEZ implements EZ: capture an external command's stdout into the edit
// buffer at dot.
func (e *Engine) execEZ(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	command, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	out, _, rerr := runExternal(string(command), true)
	if rerr != nil {
		return rerr
	}
	return e.Buf.Insert(NormalizeInput([]byte(out), false))
}

// execEN implements EN: a non-empty pattern starts wildcard filename
// iteration and an empty argument continues it. Each matched name is stored
// as the text of global Q-register 0, where G0 can retrieve it; the file
// itself is not read into the edit buffer.
func (e *Engine) execEN(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	pattern, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	if len(pattern) > 0 {
		if _, err := e.Files.setWild(string(pattern)); err != nil {
			return err
		}
	}
	name, ok := e.Files.nextWild()
	if !ok {
		return e.colonGuard(m.colon, Fail(ErrFNF, "no more matching files"))
	}
	if err := e.QReg.StoreText('0', false, []byte(name)); err != nil {
		return err
	}
	if m.colon {
		e.EStack.PushValue(-1)
	}
	return nil
}

// execEO implements EO: report (or, trivially, accept) the core's version.
func (e *Engine) execEO(cb *CmdBuf, m mods) error {
	_, n, err := e.bindArgs()
	if err != nil {
		return err
	}
	if n == nil {
		e.EStack.PushValue(coreMajorVersion)
		return nil
	}
	if !m.colon {
		if *n == coreMajorVersion {
			return nil
		}
		return Fail(ErrNYI, "cannot set version number")
	}
	switch *n {
	case -2:
		e.EStack.PushValue(corePatchVersion)
	case -1:
		e.EStack.PushValue(coreMinorVersion)
	default:
		e.EStack.PushValue(coreMajorVersion)
	}
	return nil
}

const (
	coreMajorVersion = 1
	coreMinorVersion = 0
	corePatchVersion = 0
)

// execEQ implements EQ: read a file's contents into a Q-register's text.
func (e *Engine) execEQ(cb *CmdBuf, m mods) error {
	name, local, err := e.qRegRef(cb)
	if err != nil {
		return err
	}
	_, _, err = e.bindArgs()
	if err != nil {
		return err
	}
	fname, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	data, rerr := os.ReadFile(string(fname))
	if rerr != nil {
		return e.colonGuard(m.colon, Wrap(ErrFNF, string(fname), rerr))
	}
	return e.QReg.StoreText(name, local, NormalizeInput(data, false))
}

// execEPct implements E%: write a Q-register's text out to a file.
func (e *Engine) execEPct(cb *CmdBuf, m mods) error {
	name, local, err := e.qRegRef(cb)
	if err != nil {
		return err
	}
	_, _, err = e.bindArgs()
	if err != nil {
		return err
	}
	fname, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	text, err := e.QReg.GetText(name, local)
	if err != nil {
		return err
	}
	return e.colonGuard(m.colon, os.WriteFile(string(fname), text, 0644))
}

// execEL implements EL: open (with a name) or close (bare) the log file.
func (e *Engine) execEL(cb *CmdBuf, m mods) error {
	_, _, err := e.bindArgs()
	if err != nil {
		return err
	}
	name, err := e.readText(cb, m)
	if err != nil {
		return err
	}
	if len(name) == 0 {
		if e.Files.logOut != nil && e.Files.logOut.f != nil {
			e.Files.logOut.f.Close()
		}
		e.Files.logOut = nil
		return nil
	}
	return e.Files.openOutput(string(name), logStreamIndex, 'L')
}

// logStreamIndex is a sentinel stream index distinct from the primary/
// secondary output streams, since the log file is tracked separately
// (fs.logOut) rather than through fs.out.
const logStreamIndex = -1
