package service

// Operation names a counted business operation.
type Operation string

const (
	OpClientGet        Operation = "clients.get"
	OpClientCreate     Operation = "clients.create"
	OpClientUpdate     Operation = "clients.update"
	OpClientDeactivate Operation = "clients.deactivate"
	OpTokenIssue       Operation = "tokens.issue"
	OpTokenRefresh     Operation = "tokens.refresh"
)

// Observer receives one call per successful operation. Implementations must
// be safe for concurrent use.
type Observer interface {
	Observe(op Operation)
}

type nopObserver struct{}

func (nopObserver) Observe(Operation) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
