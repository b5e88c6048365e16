package ink

// thread is a fork of the call stack, used so a choice generated under a
// start_thread block can later resume exactly the frames that were live
// when it was offered, discarding sibling branches that were never
// chosen (spec §4.4, "start_thread (fork the call stack for parallel
// consideration of option branches)").
type thread struct {
	id     int
	frames []*Frame
}

func (t *thread) clone(nextID int) *thread {
	frames := make([]*Frame, len(t.frames))
	for i, f := range t.frames {
		frames[i] = f.clone()
	}
	return &thread{id: nextID, frames: frames}
}

// CallStack owns every thread live in one Flow. can_pop/push/pop operate
// on the current (last) thread's frame list, per spec §4.3.
type CallStack struct {
	threads   []*thread
	nextID    int
	startOfRoot Pointer
}

func newCallStack(rootPointer Pointer) *CallStack {
	cs := &CallStack{startOfRoot: rootPointer}
	cs.threads = []*thread{{id: 0, frames: []*Frame{newFrame(rootPointer, 0, 0, Tunnel)}}}
	cs.nextID = 1
	return cs
}

func (cs *CallStack) currentThread() *thread { return cs.threads[len(cs.threads)-1] }

func (cs *CallStack) currentFrame() *Frame {
	t := cs.currentThread()
	if len(t.frames) == 0 {
		return nil
	}
	return t.frames[len(t.frames)-1]
}

// Depth is the number of frames in the active thread.
func (cs *CallStack) Depth() int { return len(cs.currentThread().frames) }

// Push adds a new frame of the given type to the active thread.
func (cs *CallStack) Push(t PushPopType, evalStackDepth, outputStreamLen int, pointer Pointer) {
	cur := cs.currentFrame()
	if cur != nil {
		pointer = cur.Pointer
	}
	cs.currentThread().frames = append(cs.currentThread().frames, newFrame(pointer, evalStackDepth, outputStreamLen, t))
}

// CanPop reports whether the top frame of the active thread matches t (or
// any type, when t is nil).
func (cs *CallStack) CanPop(t *PushPopType) bool {
	frames := cs.currentThread().frames
	if len(frames) <= 1 {
		return false
	}
	if t == nil {
		return true
	}
	return frames[len(frames)-1].Type == *t
}

// Pop removes the top frame of the active thread. expected, when non-nil,
// must match the frame's type or Pop fails with InvalidStoryState (spec
// §4.3).
func (cs *CallStack) Pop(expected *PushPopType) (*Frame, error) {
	th := cs.currentThread()
	if len(th.frames) <= 1 {
		return nil, newError(InvalidStoryState, "cannot pop the root call-stack frame")
	}
	top := th.frames[len(th.frames)-1]
	if expected != nil && top.Type != *expected {
		return nil, newError(InvalidStoryState, "mismatched push/pop: expected to pop a %s frame but found a %s frame", *expected, top.Type)
	}
	th.frames = th.frames[:len(th.frames)-1]
	return top, nil
}

// Peek returns the top frame without popping it.
func (cs *CallStack) Peek() *Frame { return cs.currentFrame() }

// LookupTemporary walks the active thread's frames, innermost
// first, looking for a temporary with the given name — used by
// VariablesState's temporary lookup (spec §4.3: "resolved bottom-up
// through frames of the same function scope").
func (cs *CallStack) LookupTemporary(name string) (*Value, bool) {
	frames := cs.currentThread().frames
	for i := len(frames) - 1; i >= 0; i-- {
		if v, ok := frames[i].Temporaries[name]; ok {
			return v, true
		}
		if frames[i].Type != Tunnel {
			// Function/FunctionEvaluationFromGame frames introduce a new
			// lexical scope: temporaries beneath them are not visible.
			break
		}
	}
	return nil, false
}

// SetTemporary writes name on the innermost frame, even when an outer
// visible frame already holds a temporary of that name (the new value
// then shadows it).
func (cs *CallStack) SetTemporary(name string, v *Value) {
	cs.currentFrame().Temporaries[name] = v
}

// ForkThread clones the active thread, appends the fork, and returns its
// new thread id. The fork becomes the active thread immediately, since
// currentThread always resolves to the last entry in threads (used by
// start_thread).
func (cs *CallStack) ForkThread() int {
	f := cs.currentThread().clone(cs.nextID)
	cs.nextID++
	cs.threads = append(cs.threads, f)
	return f.id
}

// ThreadIndex returns the position of the thread with the given id, or
// -1 if it no longer exists.
func (cs *CallStack) ThreadIndex(id int) int {
	for i, t := range cs.threads {
		if t.id == id {
			return i
		}
	}
	return -1
}

// KeepOnlyThread discards every thread except the one with the given id,
// making it the sole (and therefore active) thread — the behavior
// choose_choice_index relies on to collapse sibling weave branches.
func (cs *CallStack) KeepOnlyThread(id int) error {
	idx := cs.ThreadIndex(id)
	if idx < 0 {
		return newError(InvalidStoryState, "thread %d no longer exists", id)
	}
	cs.threads = []*thread{cs.threads[idx]}
	return nil
}

// PopThread discards the active thread (spec §4.4, "done" terminates
// this thread/flow), falling back to the previous thread when more than
// one remains.
func (cs *CallStack) PopThread() error {
	if len(cs.threads) <= 1 {
		return newError(InvalidStoryState, "cannot pop the last thread")
	}
	cs.threads = cs.threads[:len(cs.threads)-1]
	return nil
}

// clone deep-copies the whole call stack, used by State snapshotting.
func (cs *CallStack) clone() *CallStack {
	nc := &CallStack{startOfRoot: cs.startOfRoot, nextID: cs.nextID}
	nc.threads = make([]*thread, len(cs.threads))
	for i, t := range cs.threads {
		frames := make([]*Frame, len(t.frames))
		for j, f := range t.frames {
			frames[j] = f.clone()
		}
		nc.threads[i] = &thread{id: t.id, frames: frames}
	}
	return nc
}
