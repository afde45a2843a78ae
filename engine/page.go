// This file is part of TECO-64, a character-oriented text-editing language.
//
// Copyright 2019-2024 Franklin P. Johnston / Nowwith Treble Software.
// Licensed under the MIT License.

package engine

// page is one logical page of input: a maximal byte run between form feeds
// (or the whole file, when no-page mode is active). A page record plus a
// forward queue and a backward stack, modelled here as two owning slices
// rather than a linked list of individually allocated nodes.
type page struct {
	data    []byte
	ctrlE   bool // a form feed terminated this page
	crlfOut bool // CR/LF output mode active when this page was captured
}

// pager owns the ahead queue (pages not yet yanked into the edit buffer) and
// the behind stack (pages yanked out, kept for backward paging when virtual
// paging is enabled).
type pager struct {
	ahead   []page // FIFO: next page to yank is ahead[0]
	behind  []page // LIFO: most recent prior page is behind[last]
	vm      bool   // virtual-memory (backward) paging enabled
	noPage  bool
	eof     bool // input exhausted
}

func newPager(vm, noPage bool) *pager {
	return &pager{vm: vm, noPage: noPage}
}

// splitPages slices raw input into pages at form-feed boundaries, unless
// no-page mode is active (the whole input becomes a single page).
func splitPages(data []byte, noPage bool) []page {
	if noPage || len(data) == 0 {
		return []page{{data: data}}
	}
	var pages []page
	start := 0
	for i, c := range data {
		if c == ff {
			pages = append(pages, page{data: data[start:i], ctrlE: true})
			start = i + 1
		}
	}
	pages = append(pages, page{data: data[start:]})
	return pages
}

// load feeds a freshly opened input file's entire contents into the ahead
// queue, replacing whatever was queued before.
func (p *pager) load(data []byte) {
	p.ahead = splitPages(data, p.noPage)
	p.eof = false
}

// hasNext reports whether a forward yank would find a page.
func (p *pager) hasNext() bool { return len(p.ahead) > 0 }

// next dequeues and returns the next ahead page.
func (p *pager) next() (page, bool) {
	if len(p.ahead) == 0 {
		return page{}, false
	}
	pg := p.ahead[0]
	p.ahead = p.ahead[1:]
	return pg, true
}

// pushBehind records the page just yanked out of the edit buffer, for
// potential backward paging.
func (p *pager) pushBehind(pg page) { p.behind = append(p.behind, pg) }

// prev pops the most recent behind page (backward paging); only valid when
// virtual-memory paging is enabled.
func (p *pager) prev() (page, bool) {
	if !p.vm || len(p.behind) == 0 {
		return page{}, false
	}
	pg := p.behind[len(p.behind)-1]
	p.behind = p.behind[:len(p.behind)-1]
	return pg, true
}

// pushAheadFront re-queues a page at the front of the ahead queue, used when
// a forward yank needs to be "undone" conceptually by a subsequent backward
// page.
func (p *pager) pushAheadFront(pg page) {
	p.ahead = append([]page{pg}, p.ahead...)
}
