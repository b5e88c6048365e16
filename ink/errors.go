package ink

import "fmt"

// ErrorKind classifies the three error conditions the runtime can surface
// to a host: see spec §7.
type ErrorKind int

const (
	// BadJSON marks malformed or unrecognized compiled input: an unknown
	// encoding tag, a missing required field, an out-of-range enum value,
	// or an unsupported ink format version.
	BadJSON ErrorKind = iota
	// BadArgument marks a host-supplied argument the runtime cannot act
	// on: an unknown variable name, a malformed path string, an
	// out-of-range choice index.
	BadArgument
	// InvalidStoryState marks an operation forbidden in the story's
	// current state: popping a frame of the wrong type, continuing after
	// "end", diverging divert targets. Switching flows is not checked
	// against a background save and never raises it.
	InvalidStoryState
)

func (k ErrorKind) String() string {
	switch k {
	case BadJSON:
		return "bad json"
	case BadArgument:
		return "bad argument"
	case InvalidStoryState:
		return "invalid story state"
	default:
		return "unknown error"
	}
}

// StoryError is the single error type the runtime raises. It carries a
// Kind so callers can discriminate programmatically without string
// matching, and an optional wrapped cause for json/parse failures.
type StoryError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func newError(kind ErrorKind, format string, args ...interface{}) *StoryError {
	return &StoryError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, format string, args ...interface{}) *StoryError {
	return &StoryError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *StoryError) Error() string {
	switch e.Kind {
	case InvalidStoryState:
		return fmt.Sprintf("invalid story state: %s", e.Message)
	case BadJSON:
		return fmt.Sprintf("error parsing json: %s", e.Message)
	case BadArgument:
		return fmt.Sprintf("bad argument: %s", e.Message)
	default:
		return e.Message
	}
}

func (e *StoryError) Unwrap() error { return e.Cause }

// Is reports whether err is a *StoryError of the given kind, so callers can
// write errors.Is(err, ink.BadJSON)-style checks against a sentinel built
// with ink.Kind(BadJSON).
func (e *StoryError) Is(target error) bool {
	other, ok := target.(*StoryError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind && other.Message == ""
}

// Kind builds a sentinel *StoryError carrying only a kind, for use with
// errors.Is(err, ink.Kind(ink.BadJSON)).
func Kind(k ErrorKind) *StoryError { return &StoryError{Kind: k} }
