package registry

// NotFoundError reports a device, workload or run absent from the registry.
type NotFoundError struct {
	Kind string // "device", "workload", "run"
	Name string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found: " + e.Name }

// InvalidArgumentError reports a request that is well-formed but invalid,
// e.g. a metric the device does not declare.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string { return e.Reason }

// InternalError reports an internal consistency violation. These are never
// expected during normal operation and map to a 500 at the boundary.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string { return e.Reason }
