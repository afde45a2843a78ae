// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

// maxLoopDepth bounds nested loops
const maxLoopDepth = 32

// loopFrame tracks one active iteration
type loopFrame struct {
	iterCount   int  // remaining iterations; -1 means "until ;"
	hasCount    bool // whether an explicit n< count was given
	startPos    int  // command-buffer position just after '<'
	ifDepth     int  // conditional depth at loop entry, for nesting checks
}

// ifFrame tracks one active conditional; only its depth matters, branches
// are resolved by scanning the command buffer.
type ifFrame struct {
	hasElse bool
}

// macroFrame captures everything Mq must save/restore around a nested
// invocation.
type macroFrame struct {
	buf        *CmdBuf
	loopDepth  int
	ifDepth    int
	pushedLocal bool
}
