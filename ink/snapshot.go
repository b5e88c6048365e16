package ink

import "encoding/json"

// Snapshot serialization is the one place this package reaches for the
// standard library's encoding/json instead of github.com/mcvoid/json:
// mcvoid/json's Value type has no public constructors (it's a read-only
// parse result), so it cannot build the documents this package needs to
// write. encoding/json's struct-tag-driven marshaling is a good fit for
// the fixed-shape DTOs below (spec §4.7).

type valueDTO struct {
	Kind                   int            `json:"kind"`
	IntVal                 int            `json:"i,omitempty"`
	FloatVal               float64        `json:"f,omitempty"`
	BoolVal                bool           `json:"b,omitempty"`
	StringVal              string         `json:"s,omitempty"`
	IsNewline              bool           `json:"nl,omitempty"`
	DivertTarget           string         `json:"dt,omitempty"`
	VarPointerName         string         `json:"vpn,omitempty"`
	VarPointerContextIndex int            `json:"vpc,omitempty"`
	ListItems              map[string]int `json:"li,omitempty"`
	ListOrigins            []string       `json:"lo,omitempty"`
}

func valueToDTO(v *Value) valueDTO {
	dto := valueDTO{
		Kind:                   int(v.Kind),
		IntVal:                 v.IntVal,
		FloatVal:               v.FloatVal,
		BoolVal:                v.BoolVal,
		StringVal:              v.StringVal,
		IsNewline:              v.IsNewline,
		VarPointerName:         v.VarPointerName,
		VarPointerContextIndex: v.VarPointerContextIndex,
	}
	if v.Kind == DivertTargetValue {
		dto.DivertTarget = v.DivertTarget.String()
	}
	if v.Kind == ListValueKind {
		dto.ListItems = make(map[string]int, len(v.List.Items))
		for k, val := range v.List.Items {
			dto.ListItems[k.FullName()] = val
		}
		dto.ListOrigins = v.List.Origins
	}
	return dto
}

func dtoToValue(dto valueDTO) *Value {
	v := &Value{
		rtBase:                 newRTBase(),
		Kind:                   ValueKind(dto.Kind),
		IntVal:                 dto.IntVal,
		FloatVal:               dto.FloatVal,
		BoolVal:                dto.BoolVal,
		StringVal:              dto.StringVal,
		IsNewline:              dto.IsNewline,
		VarPointerName:         dto.VarPointerName,
		VarPointerContextIndex: dto.VarPointerContextIndex,
	}
	if dto.DivertTarget != "" {
		v.DivertTarget = ParsePath(dto.DivertTarget)
	}
	if v.Kind == ListValueKind {
		v.List = NewInkList()
		for k, val := range dto.ListItems {
			v.List.Items[listItemFromFullName(k)] = val
		}
		v.List.Origins = dto.ListOrigins
	}
	return v
}

type frameDTO struct {
	ContainerIdx           int                 `json:"c"`
	Index                  int                 `json:"i"`
	EvalStackDepthAtEntry  int                 `json:"esd"`
	OutputStreamLenAtEntry int                 `json:"osl"`
	Temporaries            map[string]valueDTO `json:"temps,omitempty"`
	Type                   int                 `json:"type"`
	InExpressionEvaluation bool                `json:"inExpr,omitempty"`
	PushedDivertOverride   string              `json:"pdo,omitempty"`
}

func frameToDTO(f *Frame) frameDTO {
	dto := frameDTO{
		ContainerIdx:           f.Pointer.ContainerIdx,
		Index:                  f.Pointer.Index,
		EvalStackDepthAtEntry:  f.EvalStackDepthAtEntry,
		OutputStreamLenAtEntry: f.OutputStreamLenAtEntry,
		Type:                   int(f.Type),
		InExpressionEvaluation: f.InExpressionEvaluation,
	}
	if len(f.Temporaries) > 0 {
		dto.Temporaries = make(map[string]valueDTO, len(f.Temporaries))
		for k, v := range f.Temporaries {
			dto.Temporaries[k] = valueToDTO(v)
		}
	}
	if f.PushedDivertOverride != nil {
		dto.PushedDivertOverride = f.PushedDivertOverride.String()
	}
	return dto
}

func dtoToFrame(dto frameDTO) (*Frame, error) {
	t, err := pushPopTypeFromInt(dto.Type)
	if err != nil {
		return nil, err
	}
	f := &Frame{
		Pointer:                Pointer{ContainerIdx: dto.ContainerIdx, Index: dto.Index},
		EvalStackDepthAtEntry:  dto.EvalStackDepthAtEntry,
		OutputStreamLenAtEntry: dto.OutputStreamLenAtEntry,
		Temporaries:            map[string]*Value{},
		Type:                   t,
		InExpressionEvaluation: dto.InExpressionEvaluation,
	}
	for k, v := range dto.Temporaries {
		f.Temporaries[k] = dtoToValue(v)
	}
	if dto.PushedDivertOverride != "" {
		p := ParsePath(dto.PushedDivertOverride)
		f.PushedDivertOverride = &p
	}
	return f, nil
}

type threadDTO struct {
	ID     int        `json:"id"`
	Frames []frameDTO `json:"frames"`
}

type callStackDTO struct {
	Threads []threadDTO `json:"threads"`
	NextID  int         `json:"nextId"`
}

func callStackToDTO(cs *CallStack) callStackDTO {
	dto := callStackDTO{NextID: cs.nextID}
	for _, t := range cs.threads {
		td := threadDTO{ID: t.id}
		for _, f := range t.frames {
			td.Frames = append(td.Frames, frameToDTO(f))
		}
		dto.Threads = append(dto.Threads, td)
	}
	return dto
}

func dtoToCallStack(dto callStackDTO, rootPointer Pointer) (*CallStack, error) {
	cs := &CallStack{startOfRoot: rootPointer, nextID: dto.NextID}
	for _, td := range dto.Threads {
		th := &thread{id: td.ID}
		for _, fd := range td.Frames {
			f, err := dtoToFrame(fd)
			if err != nil {
				return nil, err
			}
			th.frames = append(th.frames, f)
		}
		cs.threads = append(cs.threads, th)
	}
	if len(cs.threads) == 0 {
		return nil, newError(BadJSON, "call stack snapshot has no threads")
	}
	return cs, nil
}

type choiceDTO struct {
	Text                    string `json:"text"`
	Index                   int    `json:"index"`
	TargetPath              string `json:"target"`
	SourcePath              string `json:"source"`
	ThreadAtGeneration      int    `json:"thread"`
	OriginalChoicePathIndex int    `json:"origIdx"`
}

type flowDTO struct {
	Name      string       `json:"name"`
	CallStack callStackDTO `json:"callStack"`
	Choices   []choiceDTO  `json:"choices,omitempty"`
}

type stateDTO struct {
	ActiveFlow       string             `json:"activeFlow"`
	Flows            map[string]flowDTO `json:"flows"`
	Globals          map[string]valueDTO `json:"globals"`
	VisitCounts      map[string]int     `json:"visitCounts"`
	TurnIndices      map[string]int     `json:"turnIndices"`
	CurrentTurnIndex int                `json:"currentTurnIndex"`
	HasEnded         bool               `json:"hasEnded"`
}

// StateSnapshot serializes the current story state to JSON. The random
// source's internal sequence position is not captured: a restored story
// resumes deterministically from the snapshot's recorded data, but
// RANDOM/LIST_RANDOM calls after restore draw from a freshly reseeded
// generator, documented in DESIGN.md as an accepted limitation.
func (st *Story) StateSnapshot() ([]byte, error) {
	dto := stateDTO{
		ActiveFlow:       st.state.activeFlow,
		Flows:            map[string]flowDTO{},
		Globals:          map[string]valueDTO{},
		VisitCounts:      st.state.visitCounts,
		TurnIndices:      st.state.turnIndices,
		CurrentTurnIndex: st.state.currentTurnIndex,
		HasEnded:         st.state.hasEnded,
	}
	for name, v := range st.state.Variables.globals {
		dto.Globals[name] = valueToDTO(v)
	}
	for name, f := range st.state.flows {
		fd := flowDTO{Name: f.Name, CallStack: callStackToDTO(f.CallStack)}
		for _, c := range f.Choices {
			fd.Choices = append(fd.Choices, choiceDTO{
				Text:                    c.Text,
				Index:                   c.Index,
				TargetPath:              c.TargetPath.String(),
				SourcePath:              c.SourcePath.String(),
				ThreadAtGeneration:      c.ThreadAtGeneration,
				OriginalChoicePathIndex: c.OriginalChoicePathIndex,
			})
		}
		dto.Flows[name] = fd
	}
	return json.Marshal(dto)
}

// RestoreStateSnapshot replaces the story's current state with one
// previously produced by StateSnapshot, for the same compiled document.
func (st *Story) RestoreStateSnapshot(data []byte) error {
	var dto stateDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return wrapError(BadJSON, err, "could not parse state snapshot")
	}

	ns := newState(startOf(st.rootIdx), 1)
	ns.activeFlow = dto.ActiveFlow
	ns.visitCounts = dto.VisitCounts
	if ns.visitCounts == nil {
		ns.visitCounts = map[string]int{}
	}
	ns.turnIndices = dto.TurnIndices
	if ns.turnIndices == nil {
		ns.turnIndices = map[string]int{}
	}
	ns.currentTurnIndex = dto.CurrentTurnIndex
	ns.hasEnded = dto.HasEnded

	for name, v := range dto.Globals {
		ns.Variables.declareGlobal(name, dtoToValue(v))
	}

	ns.flows = map[string]*Flow{}
	for name, fd := range dto.Flows {
		cs, err := dtoToCallStack(fd.CallStack, startOf(st.rootIdx))
		if err != nil {
			return err
		}
		f := &Flow{Name: name, CallStack: cs}
		for _, cd := range fd.Choices {
			f.Choices = append(f.Choices, &Choice{
				Text:                    cd.Text,
				Index:                   cd.Index,
				TargetPath:              ParsePath(cd.TargetPath),
				SourcePath:              ParsePath(cd.SourcePath),
				ThreadAtGeneration:      cd.ThreadAtGeneration,
				OriginalChoicePathIndex: cd.OriginalChoicePathIndex,
			})
		}
		ns.flows[name] = f
	}
	if _, ok := ns.flows[ns.activeFlow]; !ok {
		return newError(BadJSON, "state snapshot's active flow %q is not among its flows", ns.activeFlow)
	}

	st.state = ns
	return nil
}
