package roster

import "strings"

// Roster is the fixed list of physicians appointments may name. It is built
// once from configuration and never changes afterwards.
type Roster struct {
	doctors []string
	index   map[string]struct{}
}

// New drops blank and duplicate names and keeps the first spelling of each.
func New(doctors []string) *Roster {
	r := &Roster{index: make(map[string]struct{}, len(doctors))}
	for _, d := range doctors {
		name := strings.TrimSpace(d)
		if name == "" {
			continue
		}
		if _, dup := r.index[name]; dup {
			continue
		}
		r.index[name] = struct{}{}
		r.doctors = append(r.doctors, name)
	}
	return r
}

// Contains matches the exact name.
func (r *Roster) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// List returns the doctors in configured order.
func (r *Roster) List() []string {
	out := make([]string, len(r.doctors))
	copy(out, r.doctors)
	return out
}

func (r *Roster) Len() int {
	return len(r.doctors)
}
