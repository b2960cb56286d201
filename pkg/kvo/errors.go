package kvo

import "errors"

// Hub errors.
var (
	// ErrNotBound is returned when the proxy has no owner yet.
	ErrNotBound = errors.New("proxy owner is not bound")

	// ErrAlreadyBound is returned by a second Bind call.
	ErrAlreadyBound = errors.New("proxy owner can only be bound once")

	// ErrTypeMismatch reports a stored callback whose value type differs from
	// the type of the key used for dispatch. It means two different
	// properties share one KeyID.
	ErrTypeMismatch = errors.New("callback type mismatch")

	// ErrOwnerGone is returned when the owner was garbage collected while
	// its proxy is still in use.
	ErrOwnerGone = errors.New("proxy owner no longer exists")

	// ErrNilOwner is returned by Bind(nil).
	ErrNilOwner = errors.New("proxy owner must not be nil")

	// ErrNilCallback is returned by Observe with a nil callback.
	ErrNilCallback = errors.New("observer callback must not be nil")

	// ErrProxyClosed is returned by operations on a closed proxy.
	ErrProxyClosed = errors.New("proxy is closed")
)
