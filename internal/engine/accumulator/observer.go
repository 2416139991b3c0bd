package accumulator

import "reflect"

// Observer receives a Change after every successful Apply.
type Observer interface {
	Notify(change Change)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(change Change)

// Notify calls f(change).
func (f ObserverFunc) Notify(change Change) {
	f(change)
}

// Attach registers an observer. Attaching the same observer twice
// delivers every change to it twice.
func (a *Accumulator) Attach(o Observer) {
	if o == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

// Detach removes the first registration of o.
// Returns false if o was not attached. Observers of non-comparable types,
// ObserverFunc included, cannot be detached.
func (a *Accumulator) Detach(o Observer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, existing := range a.observers {
		if canCompare(existing, o) && existing == o {
			a.observers = append(a.observers[:i:i], a.observers[i+1:]...)
			return true
		}
	}
	return false
}

// ObserverCount returns the number of attached observers.
func (a *Accumulator) ObserverCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.observers)
}

// snapshotObservers copies the observer list; caller must hold mu.
func (a *Accumulator) snapshotObservers() []Observer {
	if len(a.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(a.observers))
	copy(out, a.observers)
	return out
}

// canCompare reports whether both observers can be compared with ==
// without panicking.
func canCompare(a, b Observer) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable()
}
