package memory

import "context"

// noopBackend is the disabled-memory variant. Writes succeed and persist
// nothing; searches succeed and return no snippets. Callers observe a working
// but empty memory.
type noopBackend struct{}

var _ backend = noopBackend{}

func (noopBackend) Add(_ context.Context, _, _ string, _ map[string]any) error {
	return nil
}

func (noopBackend) Search(_ context.Context, _, _ string, _ int) ([]string, error) {
	return []string{}, nil
}
