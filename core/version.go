/*
version.go - Ordered version chains

PURPOSE:
  Contracts and rate cards are never edited in place. Each edit produces a
  new version linked to its predecessor, and older versions are retained as
  audit trail. Rather than chasing nullable back-references, a VersionChain
  holds the ordered sequence of versions for one logical entity, making
  "latest version" a direct lookup.

INVARIANTS:
  - Versions are contiguous and ascending, starting at 1
  - Exactly the last element is the latest version
  - Appending supersedes the previous latest

SEE ALSO:
  - contract/types.go: Contract implements Versioned
  - rate/card.go: Card implements Versioned
*/
package core

import "fmt"

// Versioned is implemented by entities that participate in a version chain.
type Versioned interface {
	VersionNumber() int
}

// VersionChain is the ordered sequence of versions of one logical entity,
// oldest first.
type VersionChain[T Versioned] struct {
	versions []T
}

// NewVersionChain builds a chain from versions ordered oldest first.
// Returns ErrPreconditionFailed when the numbering is not contiguous from 1.
func NewVersionChain[T Versioned](versions ...T) (*VersionChain[T], error) {
	for i, v := range versions {
		if v.VersionNumber() != i+1 {
			return nil, &TransitionError{
				EntityKind: "version chain",
				From:       fmt.Sprintf("version %d at position %d", v.VersionNumber(), i),
				To:         fmt.Sprintf("version %d", i+1),
				Reason:     "versions must be contiguous from 1",
			}
		}
	}
	return &VersionChain[T]{versions: versions}, nil
}

// Len returns the number of versions in the chain.
func (c *VersionChain[T]) Len() int { return len(c.versions) }

// Latest returns the newest version. ok is false for an empty chain.
func (c *VersionChain[T]) Latest() (v T, ok bool) {
	if len(c.versions) == 0 {
		return v, false
	}
	return c.versions[len(c.versions)-1], true
}

// At returns the version with the given number (1-based).
func (c *VersionChain[T]) At(number int) (v T, ok bool) {
	if number < 1 || number > len(c.versions) {
		return v, false
	}
	return c.versions[number-1], true
}

// Append adds the next version. Its number must be exactly Len()+1.
func (c *VersionChain[T]) Append(v T) error {
	if v.VersionNumber() != len(c.versions)+1 {
		return &TransitionError{
			EntityKind: "version chain",
			From:       fmt.Sprintf("latest version %d", len(c.versions)),
			To:         fmt.Sprintf("version %d", v.VersionNumber()),
			Reason:     "next version number must follow the latest",
		}
	}
	c.versions = append(c.versions, v)
	return nil
}

// All returns the versions oldest first. The slice is shared; callers must
// not mutate it.
func (c *VersionChain[T]) All() []T { return c.versions }
