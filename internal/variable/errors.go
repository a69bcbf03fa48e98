package variable

import "errors"

var (
	// ErrReadOnlyMember is returned when storing into a host member that has
	// no setter: a method, or a property without a SetX counterpart.
	ErrReadOnlyMember = errors.New("read-only member")
	// ErrUnknownMember is returned when a host path names no registered member.
	ErrUnknownMember = errors.New("unknown host member")
	// ErrNoHost is returned when a host-reflected descriptor is materialized
	// without a host instance.
	ErrNoHost = errors.New("no host instance")
	// ErrInvalidDescriptor is returned by Descriptor.Validate.
	ErrInvalidDescriptor = errors.New("invalid variable descriptor")
)
