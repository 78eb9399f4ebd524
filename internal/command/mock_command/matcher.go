package mock_command

import (
	"fmt"
	"slices"

	command "github.com/alanmeadows/prfixer/internal/command"
	gomock "go.uber.org/mock/gomock"
)

// invocationMatcher matches an Invocation by executable name and argv.
type invocationMatcher struct {
	name string
	args []string
}

// Invocation returns a matcher for an invocation of name with exactly args.
// Dir and Timeout are ignored.
func Invocation(name string, args ...string) gomock.Matcher {
	return invocationMatcher{name: name, args: args}
}

func (m invocationMatcher) Matches(x any) bool {
	inv, ok := x.(command.Invocation)
	if !ok {
		return false
	}
	return inv.Name == m.name && slices.Equal(inv.Args, m.args)
}

func (m invocationMatcher) String() string {
	return fmt.Sprintf("invocation %q %q", m.name, m.args)
}
