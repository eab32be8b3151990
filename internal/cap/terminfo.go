package cap

import (
	"fmt"

	"github.com/xo/terminfo"
)

// Terminfo backs Capabilities with a resolved terminfo(5) database entry,
// via github.com/xo/terminfo. Bool/Num/String capabilities are looked up
// by their short terminfo name; anything xo/terminfo doesn't know about
// acts as absent, matching spec.md's "unknown capabilities act as absent"
// error policy (there is none).
type Terminfo struct {
	ti *terminfo.Terminfo

	// overrides holds term_flags-style user assertions (e.g. force-256,
	// force-truecolor) layered on top of the resolved entry. A name with
	// no entry uses the terminfo value unmodified.
	overrides map[string]*bool
	numOver   map[string]*int
}

// LoadTerminfo resolves termname through xo/terminfo. ErrUnknownTerm is
// returned (wrapped) when the terminal type cannot be resolved, matching
// spec.md §7: "open returns failure and the caller decides whether to
// abort."
func LoadTerminfo(termname string) (*Terminfo, error) {
	ti, err := terminfo.Load(termname)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownTerm, termname, err)
	}
	return &Terminfo{ti: ti}, nil
}

// LoadTerminfoEnv resolves the terminal type from $TERM.
func LoadTerminfoEnv() (*Terminfo, error) {
	ti, err := terminfo.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownTerm, err)
	}
	return &Terminfo{ti: ti}, nil
}

// ForceFlag overrides a boolean capability regardless of what the
// terminfo entry says, the mechanism behind Tty.term_flags (spec.md §3).
func (t *Terminfo) ForceFlag(name string, v bool) {
	if t.overrides == nil {
		t.overrides = make(map[string]*bool)
	}
	t.overrides[name] = &v
}

// ForceNumber overrides a numeric capability, e.g. forcing colors=256.
func (t *Terminfo) ForceNumber(name string, v int) {
	if t.numOver == nil {
		t.numOver = make(map[string]*int)
	}
	t.numOver[name] = &v
}

func (t *Terminfo) Has(name string) bool {
	if t.ti == nil {
		return false
	}
	if _, ok := t.ti.Strings[name]; ok {
		return true
	}
	if _, ok := t.ti.Bools[name]; ok {
		return true
	}
	if _, ok := t.ti.Nums[name]; ok {
		return true
	}
	if _, ok := t.ti.ExtStrings[name]; ok {
		return true
	}
	if _, ok := t.ti.ExtBools[name]; ok {
		return true
	}
	return false
}

func (t *Terminfo) Flag(name string) bool {
	if v, ok := t.overrides[name]; ok {
		return *v
	}
	if t.ti == nil {
		return false
	}
	if v, ok := t.ti.Bools[name]; ok {
		return v
	}
	if v, ok := t.ti.ExtBools[name]; ok {
		return v
	}
	return false
}

func (t *Terminfo) Number(name string) int {
	if v, ok := t.numOver[name]; ok {
		return *v
	}
	if t.ti == nil {
		return 0
	}
	if v, ok := t.ti.Nums[name]; ok {
		return v
	}
	if v, ok := t.ti.ExtNums[name]; ok {
		return v
	}
	return 0
}

func (t *Terminfo) String(name string, args ...int) []byte {
	if t.ti == nil {
		return nil
	}
	raw, ok := t.ti.Strings[name]
	if !ok {
		raw, ok = t.ti.ExtStrings[name]
		if !ok {
			return nil
		}
	}
	params := make([]interface{}, len(args))
	for i, a := range args {
		params[i] = a
	}
	return []byte(t.ti.Printf(raw, params...))
}
