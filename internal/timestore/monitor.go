package timestore

// Diagnostic operations reported to a Monitor.
const (
	OpResolveSuite = "resolve_suite"
	OpRead         = "read"
	OpDecode       = "decode"
)

// Diagnostic describes one silently recovered storage failure.
type Diagnostic struct {
	// Op is one of the Op constants.
	Op string
	// Group is the shared-group identifier involved, when any.
	Group string
	// Key is the storage slot involved, when any.
	Key string
	// Err is the underlying failure, when the medium surfaced one.
	Err error
}

// Monitor observes recoveries the read path deliberately swallows: suite
// resolution falling back to the default partition, medium read errors, and
// stored mappings that fail to decode. It is optional and never affects the
// get/set contract.
type Monitor func(Diagnostic)

func (m Monitor) observe(d Diagnostic) {
	if m == nil {
		return
	}
	m(d)
}
