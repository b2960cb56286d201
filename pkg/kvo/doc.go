// Package kvo implements property change observation for Go owner types.
//
// An owner type exposes named properties through typed keys. Each owner
// instance holds a Proxy that stores the observers registered for those
// properties and dispatches notifications when the owner announces a change.
//
// # Keys
//
// A Key binds a property name to a getter on the owner type:
//
//	var TargetKey = kvo.NewKey("target", func(t *Thermostat) float64 { return t.target })
//
// Keys are created once, usually as package-level variables. Two keys with the
// same owner type and name share one KeyID and therefore one registry slot.
//
// # Change Phases
//
// Observers choose an Interest set of ChangeKind values:
//   - BeforeChange: called from WillChange, with the value before the mutation
//   - AfterChange: called from DidChange, with the value after the mutation
//   - InitialValue: called once from Observe, with the value at registration
//
// # Owner Contract
//
// The hub never intercepts mutation. The owner brackets every mutation of an
// observed property:
//
//	kvo.WillChange(t.kvo, TargetKey)
//	t.target = v
//	kvo.DidChange(t.kvo, TargetKey)
//
// Change does the same around a mutate function.
//
// # Dispatch
//
// Dispatch is synchronous: WillChange and DidChange return after every matching
// callback ran. The list of observers for a key is snapshotted before the first
// callback runs. Observers added by a callback are not notified by the same
// call; observers cancelled by a callback still receive the in-flight
// notification. Within a key, observers are notified in registration order.
//
// Callbacks are stored type-erased. Every record in the snapshot is checked
// against the key's value type before any callback runs; a mismatch returns
// ErrTypeMismatch and nothing is delivered.
//
// # Lifetimes
//
// The proxy references its owner weakly, so it never keeps the owner alive.
// Observer handles reference the proxy's registry weakly: cancelling a handle
// after the proxy was closed or collected is a no-op. A handle that is dropped
// without Cancel is cancelled by a runtime cleanup after it is collected.
//
// # Concurrency
//
// The hub is a single-threaded primitive. Callers that share a proxy between
// goroutines must serialize Observe, WillChange, DidChange and Cancel
// themselves. The registry still guards its own maps, because implicit
// cancellation runs on the runtime cleanup goroutine.
package kvo
