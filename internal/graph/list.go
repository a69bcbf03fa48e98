package graph

import (
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
)

// List is an ordered list of references, as held by sequencing and decision
// nodes. Duplicates are allowed.
type List struct {
	refs []Reference
}

// NewList returns a list of references to ids, in order.
func NewList(ids ...identity.Identity) *List {
	l := &List{}
	for _, id := range ids {
		l.Add(id)
	}
	return l
}

// Add appends a reference to id.
func (l *List) Add(id identity.Identity) {
	l.refs = append(l.refs, To(id))
}

// Insert places a reference to id at position i, clamped to the list bounds.
func (l *List) Insert(i int, id identity.Identity) {
	i = clamp(i, len(l.refs))
	l.refs = append(l.refs, Reference{})
	copy(l.refs[i+1:], l.refs[i:])
	l.refs[i] = To(id)
}

// Remove deletes the first reference to id.
func (l *List) Remove(id identity.Identity) bool {
	i := l.IndexOf(id)
	if i < 0 {
		return false
	}
	l.refs = append(l.refs[:i], l.refs[i+1:]...)
	return true
}

// IndexOf returns the position of the first reference to id, or -1.
func (l *List) IndexOf(id identity.Identity) int {
	for i, r := range l.refs {
		if r.Target == id {
			return i
		}
	}
	return -1
}

// Move relocates the entry at from to position to.
func (l *List) Move(from, to int) bool {
	if from < 0 || from >= len(l.refs) || to < 0 || to >= len(l.refs) {
		return false
	}
	moveEntry(l.refs, from, to)
	return true
}

// Len returns the number of references.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.refs)
}

// At returns the reference at position i.
func (l *List) At(i int) Reference {
	return l.refs[i]
}

// Targets returns the referenced identities in order.
func (l *List) Targets() []identity.Identity {
	if l == nil {
		return nil
	}
	out := make([]identity.Identity, len(l.refs))
	for i, r := range l.refs {
		out[i] = r.Target
	}
	return out
}

// DefaultWeight is the weight of a branch added without one.
const DefaultWeight = 1

// Weighted is a reference with a selection weight.
type Weighted struct {
	Reference
	Weight int
}

// WeightedList holds the branches of a probability node. Selection belongs
// to the scheduler; this type only stores the entries.
type WeightedList struct {
	entries []Weighted
}

// Add appends a branch to id with DefaultWeight.
func (l *WeightedList) Add(id identity.Identity) {
	l.AddWeighted(id, DefaultWeight)
}

// AddWeighted appends a branch to id with the given weight.
func (l *WeightedList) AddWeighted(id identity.Identity, weight int) {
	l.entries = append(l.entries, Weighted{Reference: To(id), Weight: weight})
}

// Remove deletes the first branch to id.
func (l *WeightedList) Remove(id identity.Identity) bool {
	i := l.IndexOf(id)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

// IndexOf returns the position of the first branch to id, or -1.
func (l *WeightedList) IndexOf(id identity.Identity) int {
	for i, e := range l.entries {
		if e.Target == id {
			return i
		}
	}
	return -1
}

// Move relocates the entry at from to position to, weight included.
func (l *WeightedList) Move(from, to int) bool {
	if from < 0 || from >= len(l.entries) || to < 0 || to >= len(l.entries) {
		return false
	}
	moveEntry(l.entries, from, to)
	return true
}

// SetWeight changes the weight of the first branch to id.
func (l *WeightedList) SetWeight(id identity.Identity, weight int) bool {
	i := l.IndexOf(id)
	if i < 0 {
		return false
	}
	l.entries[i].Weight = weight
	return true
}

// Len returns the number of branches.
func (l *WeightedList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// At returns the branch at position i.
func (l *WeightedList) At(i int) Weighted {
	return l.entries[i]
}

// Entries returns a copy of the branches.
func (l *WeightedList) Entries() []Weighted {
	if l == nil {
		return nil
	}
	out := make([]Weighted, len(l.entries))
	copy(out, l.entries)
	return out
}

// Targets returns the branch targets in order.
func (l *WeightedList) Targets() []identity.Identity {
	if l == nil {
		return nil
	}
	out := make([]identity.Identity, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Target
	}
	return out
}

// TotalWeight sums the positive weights.
func (l *WeightedList) TotalWeight() int {
	total := 0
	for _, e := range l.Entries() {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

func moveEntry[E any](s []E, from, to int) {
	e := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = e
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
