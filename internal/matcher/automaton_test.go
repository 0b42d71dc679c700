package matcher

import (
	"strings"
	"testing"
)

// feed consumes s until the automaton terminates and returns the number of
// bytes consumed.
func feed(a *Automaton, s string) int {
	for i := 0; i < len(s); i++ {
		a.Consume(s[i])
		if a.State().IsTerminal() {
			return i + 1
		}
	}
	return len(s)
}

// TestAutomatonAccepts tests inputs that must end in StateSuccess.
func TestAutomatonAccepts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantDomain string
		wantPath   string
		wantUsed   int
	}{
		{
			name:       "http with path",
			input:      "http://example.com/index.html ",
			wantDomain: "example.com",
			wantPath:   "/index.html",
			wantUsed:   30,
		},
		{
			name:       "https with path",
			input:      "https://example.com/a/b\n",
			wantDomain: "example.com",
			wantPath:   "/a/b",
			wantUsed:   24,
		},
		{
			name:       "domain only gets root path",
			input:      "http://example.com ",
			wantDomain: "example.com",
			wantPath:   "/",
			wantUsed:   19,
		},
		{
			name:       "trailing slash only",
			input:      "http://example.com/ ",
			wantDomain: "example.com",
			wantPath:   "/",
			wantUsed:   20,
		},
		{
			name:       "domain is folded to lowercase",
			input:      "http://Example.COM/Path\n",
			wantDomain: "example.com",
			wantPath:   "/Path",
			wantUsed:   24,
		},
		{
			name:       "domain with digits and hyphens",
			input:      "http://my-host-01.example.org\n",
			wantDomain: "my-host-01.example.org",
			wantPath:   "/",
			wantUsed:   30,
		},
		{
			name:       "path punctuation",
			input:      "http://a.b/x.y,z+w_v/1?q=1",
			wantDomain: "a.b",
			wantPath:   "/x.y,z+w_v/1",
			wantUsed:   23,
		},
		{
			name:       "path stops at hyphen",
			input:      "http://a.b/foo-bar",
			wantDomain: "a.b",
			wantPath:   "/foo",
			wantUsed:   15,
		},
		{
			name:       "domain stops at colon",
			input:      "http://localhost:8080/",
			wantDomain: "localhost",
			wantPath:   "/",
			wantUsed:   17,
		},
		{
			name:       "back to back schemes are absorbed into the domain",
			input:      "http://a.comhttp://b.com",
			wantDomain: "a.comhttp",
			wantPath:   "/",
			wantUsed:   17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := New()
			used := feed(&a, tt.input)

			if !a.IsSuccess() {
				t.Fatalf("expected success, got state %s", a.State())
			}
			if a.IsError() {
				t.Error("IsError() should be false on success")
			}
			if used != tt.wantUsed {
				t.Errorf("expected %d bytes consumed, got %d", tt.wantUsed, used)
			}
			if got := a.TakeDomain(); got != tt.wantDomain {
				t.Errorf("expected domain %q, got %q", tt.wantDomain, got)
			}
			if got := a.TakePath(); got != tt.wantPath {
				t.Errorf("expected path %q, got %q", tt.wantPath, got)
			}
		})
	}
}

// TestAutomatonRejects tests inputs that must end in StateError.
func TestAutomatonRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "wrong first byte", input: "xhttp://a.com"},
		{name: "typo in scheme", input: "htto://x.com"},
		{name: "uppercase scheme", input: "HTTP://example.com"},
		{name: "ftp scheme", input: "ftp://example.com"},
		{name: "missing colon", input: "http//example.com"},
		{name: "single slash", input: "http:/example.com"},
		{name: "https missing colon", input: "https//example.com"},
		{name: "httpss", input: "httpss://example.com"},
		{name: "empty domain", input: "http:///path"},
		{name: "domain starts with underscore", input: "http://_x.com"},
		{name: "space after scheme", input: "http:// example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := New()
			feed(&a, tt.input)

			if !a.IsError() {
				t.Errorf("expected error state, got %s", a.State())
			}
			if a.IsSuccess() {
				t.Error("IsSuccess() should be false on error")
			}
		})
	}
}

// TestAutomatonStates walks the prefix states one byte at a time.
func TestAutomatonStates(t *testing.T) {
	t.Parallel()

	t.Run("http prefix", func(t *testing.T) {
		t.Parallel()

		want := []State{
			StatePrefixH, StatePrefixT1, StatePrefixT2, StatePrefixP,
			StatePrefixColon, StatePrefixSlash1, StatePrefixSlash2,
			StateDomainContent, StatePathSlash, StatePathContent,
		}
		a := New()
		for i, b := range []byte("http://a/b") {
			a.Consume(b)
			if a.State() != want[i] {
				t.Fatalf("after %q: expected %s, got %s", b, want[i], a.State())
			}
		}
	})

	t.Run("https prefix", func(t *testing.T) {
		t.Parallel()

		a := New()
		feed(&a, "https")
		if a.State() != StatePrefixS {
			t.Errorf("expected %s, got %s", StatePrefixS, a.State())
		}
		a.Consume(':')
		if a.State() != StatePrefixColon {
			t.Errorf("expected %s, got %s", StatePrefixColon, a.State())
		}
	})

	t.Run("zero value is init", func(t *testing.T) {
		t.Parallel()

		var a Automaton
		if a.State() != StateInit {
			t.Errorf("expected %s, got %s", StateInit, a.State())
		}
	})
}

// TestAutomatonConsumeAfterTerminal tests the contract violation panic.
func TestAutomatonConsumeAfterTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "after error", input: "x", want: "terminal state error"},
		{name: "after success", input: "http://a ", want: "terminal state success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := New()
			feed(&a, tt.input)

			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				msg, ok := r.(string)
				if !ok {
					t.Fatalf("expected string panic value, got %T", r)
				}
				if !strings.Contains(msg, tt.want) {
					t.Errorf("expected panic message to contain %q, got %q", tt.want, msg)
				}
			}()
			a.Consume('a')
		})
	}
}

// TestAutomatonTakeIsSingleUse tests that buffers are moved out.
func TestAutomatonTakeIsSingleUse(t *testing.T) {
	t.Parallel()

	a := New()
	feed(&a, "http://a.com/x ")

	if got := a.TakeDomain(); got != "a.com" {
		t.Fatalf("expected domain a.com, got %q", got)
	}
	if got := a.TakeDomain(); got != "" {
		t.Errorf("expected empty domain on second take, got %q", got)
	}
	if got := a.TakePath(); got != "/x" {
		t.Fatalf("expected path /x, got %q", got)
	}
	if got := a.TakePath(); got != "" {
		t.Errorf("expected empty path on second take, got %q", got)
	}
}

// TestStateHelpers tests State predicates and names.
func TestStateHelpers(t *testing.T) {
	t.Parallel()

	for s := StateInit; s <= StateSuccess; s++ {
		terminal := s == StateError || s == StateSuccess
		if s.IsTerminal() != terminal {
			t.Errorf("%s: IsTerminal() = %v", s, s.IsTerminal())
		}
		acceptable := s == StateDomainContent || s == StatePathSlash || s == StatePathContent
		if s.IsAcceptable() != acceptable {
			t.Errorf("%s: IsAcceptable() = %v", s, s.IsAcceptable())
		}
		if strings.HasPrefix(s.String(), "State(") {
			t.Errorf("state %d has no name", int(s))
		}
	}

	if got := State(99).String(); got != "State(99)" {
		t.Errorf("expected State(99), got %q", got)
	}
}

// TestByteClasses tests the domain and path byte classes.
func TestByteClasses(t *testing.T) {
	t.Parallel()

	for b := 0; b < 256; b++ {
		c := byte(b)
		alnum := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')

		wantDomain := alnum || c == '.' || c == '-'
		if IsDomainContent(c) != wantDomain {
			t.Errorf("IsDomainContent(%q) = %v", c, !wantDomain)
		}

		wantPath := alnum || strings.IndexByte(".,/+_", c) >= 0
		if IsPathContent(c) != wantPath {
			t.Errorf("IsPathContent(%q) = %v", c, !wantPath)
		}
	}
}
