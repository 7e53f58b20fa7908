// Package policy evaluates ordered override tables.
//
// A table is a sequence of groups. Within a group the first rule whose
// condition holds produces the value; every later group that matches
// overwrites it. A table of single-rule groups is therefore plain
// last-write-wins, and a single group is plain first-match.
package policy

// Rule maps an input to an override value when its condition holds.
type Rule[In, Out any] struct {
	Name string
	When func(In) bool
	Then func(In) Out
}

// Group is a first-match list of rules.
type Group[In, Out any] []Rule[In, Out]

// Match returns the first rule in g whose condition holds for in.
func (g Group[In, Out]) Match(in In) (Rule[In, Out], bool) {
	for _, r := range g {
		if r.When(in) {
			return r, true
		}
	}

	return Rule[In, Out]{}, false
}

// Apply evaluates groups against in, starting from value.
// It returns the resulting value and the names of the rules that fired, in
// firing order.
func Apply[In, Out any](in In, value Out, groups ...Group[In, Out]) (Out, []string) {
	var fired []string
	for _, g := range groups {
		if r, ok := g.Match(in); ok {
			value = r.Then(in)
			fired = append(fired, r.Name)
		}
	}

	return value, fired
}
