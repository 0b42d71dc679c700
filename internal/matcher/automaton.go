package matcher

import "fmt"

// State is a state of the URL match automaton.
type State int

const (
	// StateInit is the state of a freshly spawned automaton.
	StateInit State = iota
	// StatePrefixH follows "h".
	StatePrefixH
	// StatePrefixT1 follows "ht".
	StatePrefixT1
	// StatePrefixT2 follows "htt".
	StatePrefixT2
	// StatePrefixP follows "http".
	StatePrefixP
	// StatePrefixS follows "https".
	StatePrefixS
	// StatePrefixColon follows "http:" or "https:".
	StatePrefixColon
	// StatePrefixSlash1 follows the first slash of "://".
	StatePrefixSlash1
	// StatePrefixSlash2 follows "://" and expects the first domain byte.
	StatePrefixSlash2
	// StateDomainContent accumulates domain bytes.
	StateDomainContent
	// StatePathSlash follows the slash separating domain and path.
	StatePathSlash
	// StatePathContent accumulates path bytes.
	StatePathContent

	// StateError is terminal: the input is not a URL from this offset.
	StateError
	// StateSuccess is terminal: a complete URL was recognized.
	StateSuccess
)

var stateNames = [...]string{
	StateInit:          "init",
	StatePrefixH:       "prefix_h",
	StatePrefixT1:      "prefix_t1",
	StatePrefixT2:      "prefix_t2",
	StatePrefixP:       "prefix_p",
	StatePrefixS:       "prefix_s",
	StatePrefixColon:   "prefix_colon",
	StatePrefixSlash1:  "prefix_slash1",
	StatePrefixSlash2:  "prefix_slash2",
	StateDomainContent: "domain_content",
	StatePathSlash:     "path_slash",
	StatePathContent:   "path_content",
	StateError:         "error",
	StateSuccess:       "success",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// IsTerminal reports whether s is StateError or StateSuccess.
func (s State) IsTerminal() bool {
	return s == StateError || s == StateSuccess
}

// IsAcceptable reports whether flushing the stream in state s yields a match.
func (s State) IsAcceptable() bool {
	return s == StateDomainContent || s == StatePathSlash || s == StatePathContent
}

// Automaton recognizes one candidate URL starting at a fixed stream offset.
// The zero value is ready to use and is in StateInit.
type Automaton struct {
	state  State
	domain []byte
	path   []byte
}

// New returns an automaton in StateInit.
func New() Automaton {
	return Automaton{}
}

// State returns the current state.
func (a *Automaton) State() State {
	return a.state
}

// IsSuccess reports whether a complete URL was recognized.
func (a *Automaton) IsSuccess() bool {
	return a.state == StateSuccess
}

// IsError reports whether the candidate was rejected.
func (a *Automaton) IsError() bool {
	return a.state == StateError
}

// Consume advances the automaton by one byte.
//
// Consume panics if the automaton is already in a terminal state. Callers own
// the lifecycle of an automaton and must discard it in the same step it
// terminates; feeding a terminal automaton is a bug in the caller, not bad input.
func (a *Automaton) Consume(b byte) {
	switch a.state {
	case StateInit:
		a.expect(b, 'h', StatePrefixH)
	case StatePrefixH:
		a.expect(b, 't', StatePrefixT1)
	case StatePrefixT1:
		a.expect(b, 't', StatePrefixT2)
	case StatePrefixT2:
		a.expect(b, 'p', StatePrefixP)
	case StatePrefixP:
		switch b {
		case 's':
			a.state = StatePrefixS
		case ':':
			a.state = StatePrefixColon
		default:
			a.state = StateError
		}
	case StatePrefixS:
		a.expect(b, ':', StatePrefixColon)
	case StatePrefixColon:
		a.expect(b, '/', StatePrefixSlash1)
	case StatePrefixSlash1:
		a.expect(b, '/', StatePrefixSlash2)
	case StatePrefixSlash2:
		if IsDomainContent(b) {
			a.state = StateDomainContent
			a.domain = append(a.domain, foldASCII(b))
		} else {
			a.state = StateError
		}
	case StateDomainContent:
		switch {
		case IsDomainContent(b):
			a.domain = append(a.domain, foldASCII(b))
		case b == '/':
			a.state = StatePathSlash
			a.path = append(a.path, b)
		default:
			// A bare domain is reported with the root path.
			a.state = StateSuccess
			a.path = append(a.path, '/')
		}
	case StatePathSlash, StatePathContent:
		if IsPathContent(b) {
			a.state = StatePathContent
			a.path = append(a.path, b)
		} else {
			a.state = StateSuccess
		}
	case StateError, StateSuccess:
		panic(fmt.Sprintf("matcher: Consume(%q) called on automaton in terminal state %s", b, a.state))
	default:
		panic(fmt.Sprintf("matcher: Consume(%q) called on automaton in unknown state %s", b, a.state))
	}
}

// expect moves to next when b equals want and to StateError otherwise.
func (a *Automaton) expect(b, want byte, next State) {
	if b == want {
		a.state = next
		return
	}
	a.state = StateError
}

// TakeDomain transfers the accumulated, lowercased domain out of the automaton.
// A second call returns an empty string.
func (a *Automaton) TakeDomain() string {
	s := string(a.domain)
	a.domain = nil
	return s
}

// TakePath transfers the accumulated path out of the automaton.
// A second call returns an empty string.
func (a *Automaton) TakePath() string {
	s := string(a.path)
	a.path = nil
	return s
}

// IsDomainContent reports whether b may appear in a domain.
func IsDomainContent(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '.' || b == '-'
}

// IsPathContent reports whether b may appear in a path.
func IsPathContent(b byte) bool {
	switch b {
	case '.', ',', '/', '+', '_':
		return true
	}
	return isAlpha(b) || isDigit(b)
}

func isAlpha(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// foldASCII lowercases ASCII letters and leaves every other byte unchanged.
func foldASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
