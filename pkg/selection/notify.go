package selection

// Register subscribes a listener that is invoked synchronously after every
// successful mutation. The notification carries no payload; listeners
// re-query selection state as needed. Registering with an existing name
// replaces the previous listener.
func (s *Selection) Register(name string, fn func()) {
	if s.listeners == nil {
		s.listeners = make(map[string]func())
	}
	s.listeners[name] = fn
}

// Deregister removes a previously registered listener. Unknown names are
// ignored.
func (s *Selection) Deregister(name string) {
	delete(s.listeners, name)
}

// SuspendNotifications stops listener invocation until
// ResumeNotifications is called. Mutations during suspension still update
// the mask and change record; callers use this to batch several primitive
// calls into one reported change.
func (s *Selection) SuspendNotifications() {
	s.suspended = true
}

// ResumeNotifications re-enables listener invocation. If any mutation
// occurred while notifications were suspended, a single coalesced
// notification fires immediately.
func (s *Selection) ResumeNotifications() {
	s.suspended = false
	if s.pending {
		s.pending = false
		s.notify()
	}
}

func (s *Selection) notify() {
	if s.suspended {
		s.pending = true
		return
	}
	for _, fn := range s.listeners {
		fn()
	}
}
