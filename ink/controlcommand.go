package ink

// CommandType enumerates the opcode set control commands carry, per
// spec §4.4's non-exhaustive list.
type CommandType int

const (
	CmdNotSet CommandType = iota
	CmdEvalStart
	CmdEvalOutput
	CmdEvalEnd
	CmdDuplicate
	CmdPopEvaluatedValue
	CmdPopFunction
	CmdPopTunnel
	CmdBeginString
	CmdEndString
	CmdNop
	CmdChoiceCount
	CmdTurns
	CmdTurnsSince
	CmdReadCount
	CmdRandom
	CmdSeedRandom
	CmdVisitIndex
	CmdSequenceShuffleIndex
	CmdStartThread
	CmdDone
	CmdEnd
	CmdListFromInt
	CmdListRange
	CmdListRandom
	CmdBeginTag
	CmdEndTag
)

var commandNames = map[string]CommandType{
	"ev":     CmdEvalStart,
	"out":    CmdEvalOutput,
	"/ev":    CmdEvalEnd,
	"du":     CmdDuplicate,
	"pop":    CmdPopEvaluatedValue,
	"~ret":   CmdPopFunction,
	"->->":   CmdPopTunnel,
	"str":    CmdBeginString,
	"/str":   CmdEndString,
	"nop":    CmdNop,
	"choiceCnt": CmdChoiceCount,
	"turn":   CmdTurns,
	"turns":  CmdTurnsSince,
	"readc":  CmdReadCount,
	"rnd":    CmdRandom,
	"srnd":   CmdSeedRandom,
	"visit":  CmdVisitIndex,
	"seq":    CmdSequenceShuffleIndex,
	"thread": CmdStartThread,
	"done":   CmdDone,
	"end":    CmdEnd,
	"listInt": CmdListFromInt,
	"range":  CmdListRange,
	"lrnd":   CmdListRandom,
	"#":      CmdBeginTag,
	"/#":     CmdEndTag,
	"void":   CmdNop, // "void" decodes to a no-op command, not to a Void object
}

// ControlCommand is an opcode RTObject: the interpreter switches on its
// CommandType rather than dispatching virtually, per spec §9.
type ControlCommand struct {
	rtBase
	Command CommandType
}

func newControlCommand(cmd CommandType) *ControlCommand {
	return &ControlCommand{rtBase: newRTBase(), Command: cmd}
}
