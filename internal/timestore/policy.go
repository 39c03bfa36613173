package timestore

import (
	"fmt"
	"strings"
)

type policyKind int

const (
	standardKind policyKind = iota
	sharedGroupKind
	memoryKind
)

// Policy selects which backend a Storage binds at construction. The choice
// is made once and never revisited; policies are not compared or migrated.
type Policy struct {
	kind  policyKind
	group string
}

// StandardPolicy selects the default persistent partition.
func StandardPolicy() Policy {
	return Policy{kind: standardKind}
}

// SharedGroupPolicy selects the persistent partition shared under the given
// group identifier. Resolution failures fall back to the default partition.
func SharedGroupPolicy(group string) Policy {
	return Policy{kind: sharedGroupKind, group: group}
}

// MemoryPolicy selects a process-local, non-persistent backend.
func MemoryPolicy() Policy {
	return Policy{kind: memoryKind}
}

// PolicyForGroup returns SharedGroupPolicy when group is non-blank and
// StandardPolicy otherwise. It never selects Memory; that backend is only
// reachable by explicit choice.
func PolicyForGroup(group string) Policy {
	if strings.TrimSpace(group) == "" {
		return StandardPolicy()
	}
	return SharedGroupPolicy(group)
}

// String describes the policy for logs.
func (p Policy) String() string {
	switch p.kind {
	case sharedGroupKind:
		return fmt.Sprintf("shared-group(%s)", p.group)
	case memoryKind:
		return "memory"
	default:
		return "standard"
	}
}
