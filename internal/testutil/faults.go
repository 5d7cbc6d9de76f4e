package testutil

import "sync"

// faults holds one-shot errors keyed by repository method name.
type faults struct {
	mu   sync.Mutex
	next map[string]error
}

// FailNext makes the next call of method return err.
func (f *faults) FailNext(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next == nil {
		f.next = make(map[string]error)
	}
	f.next[method] = err
}

func (f *faults) take(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.next[method]
	delete(f.next, method)
	return err
}
