package kvo

import (
	"fmt"
	"reflect"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

// Observe registers fn for the property key of p's owner.
//
// The owner must be bound. If interest has InitialValue, fn is called once
// with the current value before Observe returns. The returned handle cancels
// the registration.
func Observe[O, T any](p *Proxy[O], key Key[O, T], interest Interest, fn func(ChangeKind, T)) (*Observer, error) {
	keyName := key.String()
	if fn == nil {
		p.logError("register", keyName, ErrNilCallback)
		return nil, ErrNilCallback
	}

	owner, err := p.Owner()
	if err != nil {
		p.logError("register", keyName, err)
		return nil, err
	}

	rec, err := p.reg.insert(key.id, interest, key.valueType, fn)
	if err != nil {
		p.logError("register", keyName, err)
		return nil, err
	}
	obs := newObserver(p.reg, key.id, rec.id)

	p.debugLog("kvo: observer registered", "proxy", p.name, "key", keyName, "id", rec.id, "interest", interest.String())
	p.logEvent(log.Event{
		Category:       log.CategoryRegister,
		Key:            keyName,
		SubscriptionID: rec.id,
		Interest:       interest.String(),
	})

	if interest.Has(InitialValue) {
		v := key.get(owner)
		p.logEvent(log.Event{
			Category:       log.CategoryNotify,
			Key:            keyName,
			Phase:          log.PhaseInitial,
			SubscriptionID: rec.id,
			Value:          v,
			Observers:      1,
		})
		fn(InitialValue, v)
	}

	return obs, nil
}

// WillChange notifies BeforeChange observers of key with the current value.
// The owner calls it right before mutating the property.
func WillChange[O, T any](p *Proxy[O], key Key[O, T]) error {
	return dispatch(p, key, BeforeChange)
}

// DidChange notifies AfterChange observers of key with the new value.
// The owner calls it right after mutating the property.
func DidChange[O, T any](p *Proxy[O], key Key[O, T]) error {
	return dispatch(p, key, AfterChange)
}

// Change brackets mutate with WillChange and DidChange for key.
// mutate is not called if WillChange fails.
func Change[O, T any](p *Proxy[O], key Key[O, T], mutate func(*O)) error {
	owner, err := p.Owner()
	if err != nil {
		p.logError("change", key.String(), err)
		return err
	}
	if err := WillChange(p, key); err != nil {
		return err
	}
	mutate(owner)
	return DidChange(p, key)
}

// Check reports the error WillChange or DidChange would return for key
// right now, without notifying anyone. Owners that bracket several keys
// call it first so that a failing key cannot leave a BeforeChange without
// its AfterChange. A callback that closes the proxy or registers a
// mismatched observer during the bracket can still make a later step fail.
func Check[O, T any](p *Proxy[O], key Key[O, T]) error {
	keyName := key.String()
	if _, err := p.Owner(); err != nil {
		p.logError("check", keyName, err)
		return err
	}
	for _, kind := range []ChangeKind{BeforeChange, AfterChange} {
		recs, err := p.reg.snapshot(key.id, kind)
		if err != nil {
			p.logError("check", keyName, err)
			return err
		}
		for _, rec := range recs {
			if _, err := typedCallback[T](key.id, rec); err != nil {
				p.logError("check", keyName, err)
				return err
			}
		}
	}
	return nil
}

// dispatch delivers kind to a snapshot of the observers of key.
// Callback panics propagate to the caller.
func dispatch[O, T any](p *Proxy[O], key Key[O, T], kind ChangeKind) error {
	keyName := key.String()

	owner, err := p.Owner()
	if err != nil {
		p.logError("notify", keyName, err)
		return err
	}

	recs, err := p.reg.snapshot(key.id, kind)
	if err != nil {
		p.logError("notify", keyName, err)
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	// Check every record first so a mismatch never leaves a partial dispatch.
	callbacks := make([]func(ChangeKind, T), len(recs))
	for i, rec := range recs {
		cb, err := typedCallback[T](key.id, rec)
		if err != nil {
			p.logError("notify", keyName, err)
			return err
		}
		callbacks[i] = cb
	}

	v := key.get(owner)
	p.logEvent(log.Event{
		Category:  log.CategoryNotify,
		Key:       keyName,
		Phase:     kind.phase(),
		Value:     v,
		Observers: len(callbacks),
	})

	for _, cb := range callbacks {
		cb(kind, v)
	}
	return nil
}

// typedCallback recovers the strongly typed callback stored in rec.
func typedCallback[T any](key KeyID, rec *record) (func(ChangeKind, T), error) {
	want := reflect.TypeFor[T]()
	if rec.valueType != want {
		return nil, fmt.Errorf("%w: %s observer %d holds %s, dispatch expects %s",
			ErrTypeMismatch, key, rec.id, rec.valueType, want)
	}
	cb, ok := rec.callback.(func(ChangeKind, T))
	if !ok {
		return nil, fmt.Errorf("%w: %s observer %d holds %T",
			ErrTypeMismatch, key, rec.id, rec.callback)
	}
	return cb, nil
}
