package ink

import (
	"math/rand"
	"strings"
)

// stepControlCommand executes one opcode. Most commands leave the
// active frame unchanged and rely on step()'s generic post-switch
// advance; CmdPopFunction, CmdPopTunnel, CmdDone and CmdStartThread may
// instead change which frame or thread is current, which step() detects
// by identity (CmdStartThread advances the new frame itself).
func (st *Story) stepControlCommand(cc *ControlCommand) error {
	cs := st.state.callStack()
	frame := cs.Peek()

	switch cc.Command {
	case CmdEvalStart:
		frame.InExpressionEvaluation = true
	case CmdEvalEnd:
		frame.InExpressionEvaluation = false
	case CmdEvalOutput:
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		st.writeOutput(v)
	case CmdDuplicate:
		v, ok := st.state.peekEval()
		if !ok {
			return newError(InvalidStoryState, "duplicate (\"du\") on an empty evaluation stack")
		}
		st.state.pushEval(v.Clone())
	case CmdPopEvaluatedValue:
		if _, err := st.state.popEval(); err != nil {
			return err
		}
	case CmdPopFunction:
		top := cs.Peek()
		if top.Type != Function && top.Type != FunctionEvaluationFromGame {
			return newError(InvalidStoryState, "\"~ret\" encountered without a matching function call frame")
		}
		if _, err := cs.Pop(nil); err != nil {
			return err
		}
	case CmdPopTunnel:
		t := Tunnel
		popped, err := cs.Pop(&t)
		if err != nil {
			return err
		}
		if popped.PushedDivertOverride != nil {
			target, err := st.resolvePathOnly(*popped.PushedDivertOverride)
			if err != nil {
				return err
			}
			cs.Peek().Pointer = target
		}
	case CmdBeginString:
		st.stringCapture = append(st.stringCapture, &strings.Builder{})
	case CmdEndString:
		n := len(st.stringCapture)
		if n == 0 {
			return newError(InvalidStoryState, "\"/str\" without a matching \"str\"")
		}
		b := st.stringCapture[n-1]
		st.stringCapture = st.stringCapture[:n-1]
		st.state.pushEval(NewStringValue(b.String(), false))
	case CmdNop:
		// deliberately no-op
	case CmdChoiceCount:
		st.state.pushEval(NewIntValue(len(st.state.activeFlowObj().Choices)))
	case CmdTurns:
		st.state.pushEval(NewIntValue(st.state.currentTurnIndex))
	case CmdTurnsSince:
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		st.state.pushEval(NewIntValue(st.state.TurnsSince(st.divertTargetPath(v))))
	case CmdReadCount:
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		st.state.pushEval(NewIntValue(st.state.VisitCount(st.divertTargetPath(v))))
	case CmdRandom:
		maxV, err := st.state.popEval()
		if err != nil {
			return err
		}
		minV, err := st.state.popEval()
		if err != nil {
			return err
		}
		lo, _ := minV.AsFloat()
		hi, _ := maxV.AsFloat()
		span := int(hi) - int(lo) + 1
		if span <= 0 {
			span = 1
		}
		st.state.pushEval(NewIntValue(int(lo) + st.state.rng.Intn(span)))
	case CmdSeedRandom:
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		seed, _ := v.AsFloat()
		st.state.rng = rand.New(rand.NewSource(int64(seed)))
		st.state.pushEval(NewIntValue(0))
	case CmdVisitIndex:
		path := st.arena.pathOf(frame.Pointer.ContainerIdx).String()
		st.state.pushEval(NewIntValue(st.state.VisitCount(path)))
	case CmdSequenceShuffleIndex:
		// Simplified: picks uniformly at random every time rather than
		// maintaining a persistent shuffle bag across visits.
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		countF, _ := v.AsFloat()
		n := int(countF)
		if n <= 0 {
			n = 1
		}
		st.state.pushEval(NewIntValue(st.state.rng.Intn(n)))
	case CmdStartThread:
		st.pendingThreadID = cs.ForkThread()
		// ForkThread makes the fork the active thread immediately, so the
		// generic post-command advance in step() (which only fires when
		// cs.Peek() is still the pre-command frame) never runs here. Advance
		// the new current frame past the thread opcode ourselves, or the
		// next step() re-reads it and forks again forever.
		cs.Peek().Pointer.Index++
	case CmdDone:
		if err := cs.PopThread(); err != nil {
			frame.Pointer = NullPointer
		}
	case CmdEnd:
		frame.Pointer = NullPointer
		st.state.hasEnded = true
	case CmdListFromInt:
		nameV, err := st.state.popEval()
		if err != nil {
			return err
		}
		intV, err := st.state.popEval()
		if err != nil {
			return err
		}
		f, _ := intV.AsFloat()
		st.state.pushEval(st.listFromInt(nameV.String(), int(f)))
	case CmdListRange:
		maxV, err := st.state.popEval()
		if err != nil {
			return err
		}
		minV, err := st.state.popEval()
		if err != nil {
			return err
		}
		listV, err := st.state.popEval()
		if err != nil {
			return err
		}
		lo, _ := minV.AsFloat()
		hi, _ := maxV.AsFloat()
		st.state.pushEval(NewListValue(listV.List.Range(int(lo), int(hi))))
	case CmdListRandom:
		listV, err := st.state.popEval()
		if err != nil {
			return err
		}
		st.state.pushEval(NewListValue(st.randomFromList(listV.List)))
	case CmdBeginTag:
		st.tagCapture = append(st.tagCapture, &strings.Builder{})
	case CmdEndTag:
		n := len(st.tagCapture)
		if n == 0 {
			return newError(InvalidStoryState, "\"/#\" without a matching \"#\"")
		}
		b := st.tagCapture[n-1]
		st.tagCapture = st.tagCapture[:n-1]
		st.state.activeFlowObj().appendOutput(newTag(b.String()))
	default:
		return newError(InvalidStoryState, "unhandled control command")
	}
	return nil
}
