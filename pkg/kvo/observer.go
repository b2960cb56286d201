package kvo

import (
	"runtime"
	"sync/atomic"
	"weak"
)

// Observer is the handle returned by Observe. Cancel removes the observer;
// a handle that becomes unreachable without Cancel is cancelled by the
// runtime after it is collected.
type Observer struct {
	token     cancelToken
	cancelled atomic.Bool
	cleanup   runtime.Cleanup
}

// cancelToken is everything needed to remove a record without owning the
// registry. It must not reference the Observer itself, or the runtime
// cleanup would never run.
type cancelToken struct {
	reg weak.Pointer[registry]
	key KeyID
	id  uint64
}

func (t cancelToken) cancel(implicit bool) bool {
	r := t.reg.Value()
	if r == nil {
		return false
	}
	return r.remove(t.key, t.id, implicit)
}

func newObserver(reg *registry, key KeyID, id uint64) *Observer {
	o := &Observer{
		token: cancelToken{reg: weak.Make(reg), key: key, id: id},
	}
	o.cleanup = runtime.AddCleanup(o, func(t cancelToken) { t.cancel(true) }, o.token)
	return o
}

// ID returns the subscription ID, unique within the proxy.
func (o *Observer) ID() uint64 {
	return o.token.id
}

// Key returns the key the observer was registered under.
func (o *Observer) Key() KeyID {
	return o.token.key
}

// Active returns true while the observer is registered.
func (o *Observer) Active() bool {
	if o.cancelled.Load() {
		return false
	}
	r := o.token.reg.Value()
	return r != nil && r.contains(o.token.key, o.token.id)
}

// Cancel removes the observer. Calling Cancel more than once, or after the
// proxy was closed or collected, does nothing.
func (o *Observer) Cancel() {
	if !o.cancelled.CompareAndSwap(false, true) {
		return
	}
	o.cleanup.Stop()
	o.token.cancel(false)
}

// Close cancels the observer. It always returns nil and lets handles be
// used with defer and io.Closer helpers.
func (o *Observer) Close() error {
	o.Cancel()
	return nil
}
