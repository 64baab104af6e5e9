package hierarchy

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortPolicy is a named ordering rule applied to every sibling set.
type SortPolicy string

const (
	ContainerFirstAsc  SortPolicy = "container-first-asc"
	ContainerFirstDesc SortPolicy = "container-first-desc"
	NameAsc            SortPolicy = "name-asc"
	NameDesc           SortPolicy = "name-desc"

	DefaultSortPolicy = ContainerFirstAsc
)

// SortPolicies lists the policies in the order they are cycled through.
var SortPolicies = []SortPolicy{
	ContainerFirstAsc,
	ContainerFirstDesc,
	NameAsc,
	NameDesc,
}

// Older front ends used different names for the same four policies.
var policyAliases = map[string]SortPolicy{
	"folder-az":        ContainerFirstAsc,
	"folder-za":        ContainerFirstDesc,
	"folders-first-az": ContainerFirstAsc,
	"folders-first-za": ContainerFirstDesc,
	"alpha-az":         NameAsc,
	"alpha-za":         NameDesc,
	"az":               NameAsc,
	"za":               NameDesc,
}

// ParseSortPolicy resolves a policy name or one of its aliases.
func ParseSortPolicy(s string) (SortPolicy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range SortPolicies {
		if string(p) == name {
			return p, nil
		}
	}
	if p, ok := policyAliases[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown sort policy %q (valid: %s)", s, strings.Join(PolicyNames(), ", "))
}

// PolicyNames returns the canonical policy names.
func PolicyNames() []string {
	names := make([]string, len(SortPolicies))
	for i, p := range SortPolicies {
		names[i] = string(p)
	}
	return names
}

func (p SortPolicy) String() string {
	return string(p)
}

// Set implements pflag.Value.
func (p *SortPolicy) Set(s string) error {
	parsed, err := ParseSortPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Type implements pflag.Value.
func (p *SortPolicy) Type() string {
	return "policy"
}

// ContainersFirst reports whether containers precede leaves.
func (p SortPolicy) ContainersFirst() bool {
	return p == ContainerFirstAsc || p == ContainerFirstDesc
}

// Descending reports whether names are compared in reverse.
func (p SortPolicy) Descending() bool {
	return p == ContainerFirstDesc || p == NameDesc
}

// Next returns the policy following p in SortPolicies, wrapping around.
func (p SortPolicy) Next() SortPolicy {
	i := slices.Index(SortPolicies, p)
	return SortPolicies[(i+1)%len(SortPolicies)]
}

// Label is a short human description of the policy.
func (p SortPolicy) Label() string {
	switch p {
	case ContainerFirstAsc:
		return "folders first, A-Z"
	case ContainerFirstDesc:
		return "folders first, Z-A"
	case NameAsc:
		return "A-Z"
	case NameDesc:
		return "Z-A"
	default:
		return string(p)
	}
}

// Sorter orders sibling sets in place. Names are compared with a
// case-insensitive collator for the configured language. A Sorter is not
// safe for concurrent use.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter returns a Sorter collating names for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{
		collator: collate.New(tag, collate.IgnoreCase),
	}
}

// Sort reorders the children of every node under root according to policy,
// parents before children. Nodes never move across parents. Names that
// collate equal keep their input order under every policy.
func (s *Sorter) Sort(root *Node, policy SortPolicy) {
	if root == nil {
		return
	}

	cmp := s.comparator(policy)
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(n.Children) == 0 {
			continue
		}
		slices.SortStableFunc(n.Children, cmp)
		for _, c := range n.Children {
			if len(c.Children) > 0 {
				stack = append(stack, c)
			}
		}
	}
}

func (s *Sorter) comparator(policy SortPolicy) func(a, b *Node) int {
	containersFirst := policy.ContainersFirst()
	descending := policy.Descending()

	return func(a, b *Node) int {
		if containersFirst && a.Kind != b.Kind {
			if a.Kind == Container {
				return -1
			}
			return 1
		}
		if c := s.collator.CompareString(a.Name, b.Name); c != 0 {
			if descending {
				return -c
			}
			return c
		}
		return a.seq - b.seq
	}
}
