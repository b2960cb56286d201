package kvo

import "github.com/kvo-hub/kvo-go/pkg/log"

// ChangeKind tells an observer why it is being called.
type ChangeKind uint8

const (
	// BeforeChange is delivered by WillChange, before the mutation.
	BeforeChange ChangeKind = 1 << iota

	// AfterChange is delivered by DidChange, after the mutation.
	AfterChange

	// InitialValue is delivered once by Observe.
	InitialValue
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case BeforeChange:
		return "BEFORE"
	case AfterChange:
		return "AFTER"
	case InitialValue:
		return "INITIAL"
	default:
		return "UNKNOWN"
	}
}

func (k ChangeKind) phase() log.Phase {
	switch k {
	case BeforeChange:
		return log.PhaseBefore
	case AfterChange:
		return log.PhaseAfter
	case InitialValue:
		return log.PhaseInitial
	default:
		return log.PhaseNone
	}
}

// Interest is the set of change kinds an observer wants.
type Interest uint8

// Common interest sets.
const (
	// InterestChanges is BeforeChange and AfterChange.
	InterestChanges = Interest(BeforeChange | AfterChange)

	// InterestAll is every change kind.
	InterestAll = Interest(BeforeChange | AfterChange | InitialValue)
)

// Interested builds an interest set from kinds.
func Interested(kinds ...ChangeKind) Interest {
	var i Interest
	for _, k := range kinds {
		i |= Interest(k)
	}
	return i
}

// Has returns true if the set contains kind.
func (i Interest) Has(kind ChangeKind) bool {
	return kind != 0 && i&Interest(kind) == Interest(kind)
}

// String returns the set as letters: B(efore), A(fter), I(nitial).
func (i Interest) String() string {
	var s string
	if i.Has(BeforeChange) {
		s += "B"
	}
	if i.Has(AfterChange) {
		s += "A"
	}
	if i.Has(InitialValue) {
		s += "I"
	}
	if s == "" {
		return "-"
	}
	return s
}
