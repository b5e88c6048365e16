// Package cffi is the opaque-handle C ABI surface for embedding the ink
// runtime in a host written in another language (spec §6): a host never
// sees a Go pointer, only small integer handles it passes back in on
// every call, and every entry point returns a Status instead of using
// panics or Go-specific error values that couldn't cross the boundary.
//
// Every //export'd function below follows cgo's rules for exported
// functions: a single scalar return value, C-compatible parameter types
// only, and out-parameters (via pointers) instead of multiple Go return
// values or a returned Go string — mirroring the opaque-pointer-plus-
// getter shape of original_source's clib/src/{cchoices,ctags,lib}.rs.
//
// This package is built as a C shared library or archive
// (go build -buildmode=c-shared / c-archive), never imported by Go code
// in this module — cgo only emits the symbols //export names when the
// package is main, matching how every real cgo shared-library package is
// laid out.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/bladecoder/ink-go/ink"
)

// status mirrors the C-side binkc_* result codes (OK/FAIL/NULL_POINTER).
type status int32

const (
	statusOK          status = 0
	statusFail        status = 1
	statusNullPointer status = 2
)

type registry struct {
	mu      sync.Mutex
	next    uint64
	stories map[uint64]*ink.Story
}

var reg = &registry{stories: map[uint64]*ink.Story{}}

func (r *registry) create(st *ink.Story) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := r.next
	r.stories[h] = st
	return h
}

func (r *registry) destroy(h uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[h]; !ok {
		return false
	}
	delete(r.stories, h)
	return true
}

func (r *registry) lookup(h uint64) (*ink.Story, status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stories[h]
	if !ok {
		return nil, statusNullPointer
	}
	return st, statusOK
}

// InkCreateStory parses compiledJSON and writes a handle to *outHandle.
//
//export InkCreateStory
func InkCreateStory(compiledJSON *C.char, outHandle *C.uint64_t) C.int {
	if compiledJSON == nil || outHandle == nil {
		return C.int(statusNullPointer)
	}
	st, err := ink.New(C.GoString(compiledJSON), ink.Options{})
	if err != nil {
		return C.int(statusFail)
	}
	*outHandle = C.uint64_t(reg.create(st))
	return C.int(statusOK)
}

// InkDestroyStory releases a handle. Calling it twice, or on an unknown
// handle, returns NULL_POINTER.
//
//export InkDestroyStory
func InkDestroyStory(handle C.uint64_t) C.int {
	if !reg.destroy(uint64(handle)) {
		return C.int(statusNullPointer)
	}
	return C.int(statusOK)
}

// InkCanContinue reports whether the story has more content to pull.
//
//export InkCanContinue
func InkCanContinue(handle C.uint64_t, outCanContinue *C.int) C.int {
	if outCanContinue == nil {
		return C.int(statusNullPointer)
	}
	st, s := reg.lookup(uint64(handle))
	if s != statusOK {
		return C.int(s)
	}
	if st.CanContinue() {
		*outCanContinue = 1
	} else {
		*outCanContinue = 0
	}
	return C.int(statusOK)
}

// InkContinue advances the story by one step and writes the text
// produced into a newly allocated *outText. The caller owns that memory
// and must release it with InkFreeString.
//
//export InkContinue
func InkContinue(handle C.uint64_t, outText **C.char) C.int {
	if outText == nil {
		return C.int(statusNullPointer)
	}
	st, s := reg.lookup(uint64(handle))
	if s != statusOK {
		return C.int(s)
	}
	text, err := st.Continue()
	*outText = C.CString(text)
	if err != nil {
		return C.int(statusFail)
	}
	return C.int(statusOK)
}

// InkChoiceCount reports how many choices are currently on offer.
//
//export InkChoiceCount
func InkChoiceCount(handle C.uint64_t, outCount *C.int) C.int {
	if outCount == nil {
		return C.int(statusNullPointer)
	}
	st, s := reg.lookup(uint64(handle))
	if s != statusOK {
		return C.int(s)
	}
	*outCount = C.int(len(st.CurrentChoices()))
	return C.int(statusOK)
}

// InkChoiceText writes the text of the choice at index into a newly
// allocated *outText, owned by the caller and released with
// InkFreeString.
//
//export InkChoiceText
func InkChoiceText(handle C.uint64_t, index C.int, outText **C.char) C.int {
	if outText == nil {
		return C.int(statusNullPointer)
	}
	st, s := reg.lookup(uint64(handle))
	if s != statusOK {
		return C.int(s)
	}
	choices := st.CurrentChoices()
	i := int(index)
	if i < 0 || i >= len(choices) {
		return C.int(statusFail)
	}
	*outText = C.CString(choices[i].Text)
	return C.int(statusOK)
}

// InkChooseChoiceIndex resumes the story at the chosen option.
//
//export InkChooseChoiceIndex
func InkChooseChoiceIndex(handle C.uint64_t, index C.int) C.int {
	st, s := reg.lookup(uint64(handle))
	if s != statusOK {
		return C.int(s)
	}
	if err := st.ChooseChoiceIndex(int(index)); err != nil {
		return C.int(statusFail)
	}
	return C.int(statusOK)
}

// InkFreeString releases a *char previously returned through an out
// parameter (InkContinue, InkChoiceText). Every getter that copies a Go
// string onto the C heap via C.CString is paired with this free
// function, mirroring the original's binkc_cstring_free — the caller,
// not Go's garbage collector, owns that allocation.
//
//export InkFreeString
func InkFreeString(s *C.char) {
	C.free(unsafe.Pointer(s))
}

// main is required by package main but is never invoked: a c-shared/
// c-archive build only runs code reached through the exported C symbols
// above.
func main() {}
