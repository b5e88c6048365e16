package ink

import (
	"strings"

	json "github.com/mcvoid/json"
)

// Compiled-document encoding (spec §4.1). A JSON array is a Container: its
// elements are content in document order, except that a trailing JSON
// object that carries none of the tagged keys below is instead the
// container's metadata — an optional "#f" visit/turn-counting flag
// bitmask plus any number of named-child entries.
//
// A bare JSON string is either a recognized control-command tag (see
// commandNames), a native-function operator name (see nativeFuncArity),
// the glue sigil "<>", the literal newline "\n", or text prefixed with
// "^" (the caret is stripped). Anything else is BadJSON.
//
// A JSON object carries exactly one of these tags:
//
//	{"->": path, "var": bool, "cond": bool, "push": "tunnel"|"function"|"funcEval",
//	 "external": bool, "externalArgs": int, "fallback": path,
//	 "tunnelOnwards": bool}                                       — Divert
//	{"*": path, "flg": int}                                      — ChoicePoint
//	{"VAR?": name}                                                — global VariableReference
//	{"CNT?": path}                                                — visit/turn-count VariableReference
//	{"VAR=": name, "new": bool}                                   — global VariableAssignment
//	{"temp=": name, "new": bool}                                  — temporary VariableAssignment
//	{"list": {"origin.item": int, ...}, "origins": [string, ...]} — List value
//	{"^->": path}                                                 — literal divert-target value
//	{"^var": name, "ci": int}                                     — literal variable-pointer value
//	{"tag": text}                                                 — static Tag
const glueSigil = "<>"

const (
	minSupportedInkVersion = 17
	maxSupportedInkVersion = 21
)

type compiledDoc struct {
	a        *arena
	rootIdx  int
	listDefs map[string]map[string]int
}

func parseCompiledJSON(src string, versionMin, versionMax int) (*compiledDoc, error) {
	root, err := json.ParseString(src)
	if err != nil {
		return nil, wrapError(BadJSON, err, "could not parse compiled story json")
	}
	if root.Type() != json.Object {
		return nil, newError(BadJSON, "compiled story document must be a json object")
	}
	obj, _ := root.AsObject()

	verVal, ok := obj["inkVersion"]
	if !ok {
		return nil, newError(BadJSON, "missing required field \"inkVersion\"")
	}
	ver, err := verVal.AsInteger()
	if err != nil {
		return nil, wrapError(BadJSON, err, "\"inkVersion\" must be an integer")
	}
	if int(ver) < versionMin || int(ver) > versionMax {
		return nil, newError(BadJSON, "unsupported ink format version %d (accepted range %d-%d)", ver, versionMin, versionMax)
	}

	rootVal, ok := obj["root"]
	if !ok {
		return nil, newError(BadJSON, "missing required field \"root\"")
	}

	doc := &compiledDoc{a: newArena(), listDefs: map[string]map[string]int{}}
	s := &serializer{doc: doc}

	rootIdx, err := s.decodeObject(rootVal)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.a.get(rootIdx).(*Container); !ok {
		return nil, newError(BadJSON, "\"root\" must encode a container")
	}
	doc.rootIdx = rootIdx

	if ldVal, ok := obj["listDefs"]; ok {
		lists, err := ldVal.AsObject()
		if err != nil {
			return nil, wrapError(BadJSON, err, "\"listDefs\" must be an object")
		}
		for listName, itemsVal := range lists {
			items, err := itemsVal.AsObject()
			if err != nil {
				return nil, wrapError(BadJSON, err, "list definition %q must be an object", listName)
			}
			m := map[string]int{}
			for itemName, v := range items {
				n, err := v.AsInteger()
				if err != nil {
					return nil, wrapError(BadJSON, err, "list item %q.%q must be an integer", listName, itemName)
				}
				m[itemName] = int(n)
			}
			doc.listDefs[listName] = m
		}
	}

	return doc, nil
}

type serializer struct{ doc *compiledDoc }

func (s *serializer) arena() *arena { return s.doc.a }

func (s *serializer) decodeObject(v *json.Value) (int, error) {
	switch v.Type() {
	case json.Array:
		return s.decodeContainer(v)
	case json.Integer:
		n, _ := v.AsInteger()
		return s.arena().add(NewIntValue(int(n))), nil
	case json.Number:
		f, _ := v.AsNumber()
		return s.arena().add(NewFloatValue(f)), nil
	case json.Boolean:
		b, _ := v.AsBoolean()
		return s.arena().add(NewBoolValue(b)), nil
	case json.Null:
		return s.arena().add(newNull()), nil
	case json.String:
		str, _ := v.AsString()
		return s.decodeString(str)
	case json.Object:
		return s.decodeTaggedObject(v)
	default:
		return -1, newError(BadJSON, "unrecognized json value %s", v.Type())
	}
}

func (s *serializer) decodeString(str string) (int, error) {
	if cmd, ok := commandNames[str]; ok {
		return s.arena().add(newControlCommand(cmd)), nil
	}
	if _, ok := nativeFuncArity[str]; ok {
		return s.arena().add(newNativeFunctionCall(str)), nil
	}
	switch {
	case str == glueSigil:
		return s.arena().add(newGlue()), nil
	case str == "\n":
		return s.arena().add(NewStringValue("\n", true)), nil
	case strings.HasPrefix(str, "^"):
		return s.arena().add(NewStringValue(str[1:], false)), nil
	default:
		return -1, newError(BadJSON, "unrecognized string tag %q", str)
	}
}

var reservedObjectKeys = []string{"->", "*", "VAR?", "CNT?", "VAR=", "temp=", "list", "^->", "^var", "tag"}

func isTaggedObject(v *json.Value) bool {
	obj, err := v.AsObject()
	if err != nil {
		return false
	}
	for _, k := range reservedObjectKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func (s *serializer) decodeTaggedObject(v *json.Value) (int, error) {
	obj, _ := v.AsObject()
	switch {
	case has(obj, "->"):
		return s.decodeDivert(obj)
	case has(obj, "*"):
		return s.decodeChoicePoint(obj)
	case has(obj, "VAR?"):
		return s.decodeVarRef(obj, false)
	case has(obj, "CNT?"):
		return s.decodeVarRef(obj, true)
	case has(obj, "VAR="):
		return s.decodeVarAssign(obj, true)
	case has(obj, "temp="):
		return s.decodeVarAssign(obj, false)
	case has(obj, "list"):
		return s.decodeListValue(obj)
	case has(obj, "^->"):
		return s.decodeDivertTargetValue(obj)
	case has(obj, "^var"):
		return s.decodeVarPointerValue(obj)
	case has(obj, "tag"):
		return s.decodeTagObj(obj)
	default:
		return -1, newError(BadJSON, "unrecognized object encoding")
	}
}

func has(m map[string]*json.Value, key string) bool { _, ok := m[key]; return ok }

func getBool(m map[string]*json.Value, key string, def bool) bool {
	v, ok := m[key]
	if !ok {
		return def
	}
	b, err := v.AsBoolean()
	if err != nil {
		return def
	}
	return b
}

func (s *serializer) decodeDivert(obj map[string]*json.Value) (int, error) {
	d := newDivert()
	target, err := obj["->"].AsString()
	if err != nil {
		return -1, wrapError(BadJSON, err, "divert target must be a string")
	}
	if getBool(obj, "var", false) {
		d.VariableDivertName = target
	} else {
		d.TargetPath = ParsePath(target)
	}
	d.IsConditional = getBool(obj, "cond", false)
	if pushVal, ok := obj["push"]; ok {
		pushStr, err := pushVal.AsString()
		if err != nil {
			return -1, wrapError(BadJSON, err, "divert \"push\" must be a string")
		}
		d.PushesToStack = true
		switch pushStr {
		case "tunnel":
			d.StackPushType = Tunnel
		case "function":
			d.StackPushType = Function
		case "funcEval":
			d.StackPushType = FunctionEvaluationFromGame
		default:
			return -1, newError(BadJSON, "unknown divert push type %q", pushStr)
		}
	}
	d.IsExternal = getBool(obj, "external", false)
	d.IsTunnelOnwards = getBool(obj, "tunnelOnwards", false)
	if n, ok := obj["externalArgs"]; ok {
		v, err := n.AsInteger()
		if err != nil {
			return -1, wrapError(BadJSON, err, "divert \"externalArgs\" must be an integer")
		}
		d.ExternalArgs = int(v)
	}
	if fb, ok := obj["fallback"]; ok {
		s2, err := fb.AsString()
		if err != nil {
			return -1, wrapError(BadJSON, err, "divert \"fallback\" must be a string")
		}
		d.FallbackPath = ParsePath(s2)
	}
	return s.arena().add(d), nil
}

func (s *serializer) decodeChoicePoint(obj map[string]*json.Value) (int, error) {
	c := newChoicePoint()
	target, err := obj["*"].AsString()
	if err != nil {
		return -1, wrapError(BadJSON, err, "choice point target must be a string")
	}
	c.PathOnChoice = ParsePath(target)
	if f, ok := obj["flg"]; ok {
		n, err := f.AsInteger()
		if err != nil {
			return -1, wrapError(BadJSON, err, "choice point \"flg\" must be an integer")
		}
		flags := int(n)
		c.HasCondition = flags&0x1 != 0
		c.HasStartContent = flags&0x2 != 0
		c.HasChoiceOnlyContent = flags&0x4 != 0
		c.IsInvisibleDefault = flags&0x8 != 0
		c.OnceOnly = flags&0x10 != 0
	}
	return s.arena().add(c), nil
}

func (s *serializer) decodeVarRef(obj map[string]*json.Value, isCount bool) (int, error) {
	vr := newVariableReference()
	key := "VAR?"
	if isCount {
		key = "CNT?"
	}
	str, err := obj[key].AsString()
	if err != nil {
		return -1, wrapError(BadJSON, err, "%q must be a string", key)
	}
	if isCount {
		vr.PathForCount = ParsePath(str)
	} else {
		vr.Name = str
	}
	return s.arena().add(vr), nil
}

func (s *serializer) decodeVarAssign(obj map[string]*json.Value, isGlobal bool) (int, error) {
	va := newVariableAssignment()
	key := "temp="
	if isGlobal {
		key = "VAR="
	}
	str, err := obj[key].AsString()
	if err != nil {
		return -1, wrapError(BadJSON, err, "%q must be a string", key)
	}
	va.Name = str
	va.IsGlobal = isGlobal
	va.IsNewDeclaration = getBool(obj, "new", false)
	return s.arena().add(va), nil
}

func (s *serializer) decodeListValue(obj map[string]*json.Value) (int, error) {
	listVal, err := obj["list"].AsObject()
	if err != nil {
		return -1, wrapError(BadJSON, err, "\"list\" must be an object")
	}
	l := NewInkList()
	for full, v := range listVal {
		n, err := v.AsInteger()
		if err != nil {
			return -1, wrapError(BadJSON, err, "list item %q must have an integer value", full)
		}
		l.Items[listItemFromFullName(full)] = int(n)
	}
	if o, ok := obj["origins"]; ok {
		arr, err := o.AsArray()
		if err != nil {
			return -1, wrapError(BadJSON, err, "\"origins\" must be an array")
		}
		for _, item := range arr {
			str, err := item.AsString()
			if err != nil {
				return -1, wrapError(BadJSON, err, "list origin entries must be strings")
			}
			l.Origins = append(l.Origins, str)
		}
	}
	return s.arena().add(NewListValue(l)), nil
}

func (s *serializer) decodeDivertTargetValue(obj map[string]*json.Value) (int, error) {
	str, err := obj["^->"].AsString()
	if err != nil {
		return -1, wrapError(BadJSON, err, "\"^->\" must be a string")
	}
	return s.arena().add(NewDivertTargetValue(ParsePath(str))), nil
}

func (s *serializer) decodeVarPointerValue(obj map[string]*json.Value) (int, error) {
	name, err := obj["^var"].AsString()
	if err != nil {
		return -1, wrapError(BadJSON, err, "\"^var\" must be a string")
	}
	ci := -1
	if c, ok := obj["ci"]; ok {
		n, err := c.AsInteger()
		if err != nil {
			return -1, wrapError(BadJSON, err, "\"ci\" must be an integer")
		}
		ci = int(n)
	}
	return s.arena().add(NewVariablePointerValue(name, ci)), nil
}

func (s *serializer) decodeTagObj(obj map[string]*json.Value) (int, error) {
	text, err := obj["tag"].AsString()
	if err != nil {
		return -1, wrapError(BadJSON, err, "\"tag\" must be a string")
	}
	return s.arena().add(newTag(text)), nil
}

func (s *serializer) decodeContainer(v *json.Value) (int, error) {
	arr, err := v.AsArray()
	if err != nil {
		return -1, wrapError(BadJSON, err, "container must be an array")
	}
	c := newContainer()
	idx := s.arena().add(c)
	c.self = idx

	n := len(arr)
	hasMeta := n > 0 && arr[n-1].Type() == json.Object && !isTaggedObject(arr[n-1])
	content := arr
	if hasMeta {
		content = arr[:n-1]
	}

	for _, item := range content {
		childIdx, err := s.decodeObject(item)
		if err != nil {
			return -1, err
		}
		c.addChild(s.arena(), childIdx)
	}

	if hasMeta {
		meta, _ := arr[n-1].AsObject()
		for key, val := range meta {
			if key == "#f" {
				flags, err := val.AsInteger()
				if err != nil {
					return -1, wrapError(BadJSON, err, "container flags (\"#f\") must be an integer")
				}
				c.VisitsShouldBeCounted = flags&1 != 0
				c.TurnIndexShouldBeCounted = flags&2 != 0
				c.CountingAtStartOnly = flags&4 != 0
				continue
			}
			childIdx, err := s.decodeObject(val)
			if err != nil {
				return -1, err
			}
			child := s.arena().get(childIdx)
			if cc, ok := child.(*Container); ok {
				cc.Name = key
			}
			child.setParentIndex(idx)
			child.setSelfIndex(-1)
			c.setNamed(key, childIdx)
		}
	}

	return idx, nil
}
