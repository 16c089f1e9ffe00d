package echelle

import "fmt"

// Stack holds one array per epoch for a single extension.
type Stack []Array

// Shape returns the common shape of the stack. An empty stack has shape
// (0, 0). Arrays that disagree with epoch 0 yield ErrShapeMismatch.
func (s Stack) Shape() (rows, cols int, err error) {
	if len(s) == 0 {
		return 0, 0, nil
	}
	rows, cols = s[0].Shape()
	for i := 1; i < len(s); i++ {
		if !s[i].SameShape(s[0]) {
			return 0, 0, fmt.Errorf("epoch %d is %s, epoch 0 is %s: %w", i, s[i], s[0], ErrShapeMismatch)
		}
	}
	return rows, cols, nil
}

// Clone deep-copies every array in the stack.
func (s Stack) Clone() Stack {
	if s == nil {
		return nil
	}
	out := make(Stack, len(s))
	for i, a := range s {
		out[i] = a.Clone()
	}
	return out
}

// Set is an insertion-ordered mapping from extension name to Stack.
type Set struct {
	names  []string
	stacks map[string]Stack
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{stacks: make(map[string]Stack)}
}

// Append adds arr as the next epoch of extension name.
func (s *Set) Append(name string, arr Array) {
	if _, ok := s.stacks[name]; !ok {
		s.names = append(s.names, name)
	}
	s.stacks[name] = append(s.stacks[name], arr)
}

// Put replaces the stack of extension name, keeping its position if it
// already exists.
func (s *Set) Put(name string, stack Stack) {
	if _, ok := s.stacks[name]; !ok {
		s.names = append(s.names, name)
	}
	s.stacks[name] = stack
}

// Stack returns the stack stored under name.
func (s *Set) Stack(name string) (Stack, bool) {
	st, ok := s.stacks[name]
	return st, ok
}

// Has reports whether name is present.
func (s *Set) Has(name string) bool {
	_, ok := s.stacks[name]
	return ok
}

// Names returns extension names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of extensions.
func (s *Set) Len() int { return len(s.names) }

// Epochs returns the largest stack length in the set.
func (s *Set) Epochs() int {
	n := 0
	for _, st := range s.stacks {
		if len(st) > n {
			n = len(st)
		}
	}
	return n
}

// First returns epoch 0 of every extension as a single-epoch set.
func (s *Set) First() *Set {
	out := NewSet()
	for _, name := range s.names {
		st := s.stacks[name]
		if len(st) == 0 {
			out.Put(name, Stack{})
			continue
		}
		out.Put(name, Stack{st[0].Clone()})
	}
	return out
}

// Clone deep-copies the set.
func (s *Set) Clone() *Set {
	out := &Set{
		names:  make([]string, len(s.names)),
		stacks: make(map[string]Stack, len(s.stacks)),
	}
	copy(out.names, s.names)
	for name, st := range s.stacks {
		out.stacks[name] = st.Clone()
	}
	return out
}

// Channel names the three extensions that describe one fiber.
type Channel struct {
	Name       string
	Flux       string
	Variance   string
	Wavelength string
}

// Validate checks that every extension of c exists in set and that the three
// stacks share one shape.
func (c Channel) Validate(set *Set) (rows, cols int, err error) {
	epochs := 0
	for i, ext := range []string{c.Flux, c.Variance, c.Wavelength} {
		st, ok := set.Stack(ext)
		if !ok {
			return 0, 0, fmt.Errorf("channel %q: extension %q: %w", c.Name, ext, ErrMissingExtension)
		}
		r, cc, err := st.Shape()
		if err != nil {
			return 0, 0, fmt.Errorf("channel %q: extension %q: %w", c.Name, ext, err)
		}
		if i == 0 {
			rows, cols, epochs = r, cc, len(st)
			continue
		}
		if r != rows || cc != cols || len(st) != epochs {
			return 0, 0, fmt.Errorf("channel %q: extension %q is %d epochs of %dx%d, flux is %d epochs of %dx%d: %w",
				c.Name, ext, len(st), r, cc, epochs, rows, cols, ErrShapeMismatch)
		}
	}
	return rows, cols, nil
}
