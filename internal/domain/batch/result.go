package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one item in a bulk index call.
type Result struct {
	index  int
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result for the item at position index.
func NewOK(index int, id string) Result { return Result{index: index, id: id, status: StatusOK} }

// NewError creates a failed batch result for the item at position index.
func NewError(index int, err error) Result {
	return Result{index: index, status: StatusError, err: err}
}

// Index returns the item position in the request.
func (r Result) Index() int { return r.index }

// ID returns the assigned document id (empty on failure).
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Reindex counts the outcome of recomputing derived state for one type.
// Failed documents keep their previous derived state.
type Reindex struct {
	Type      string
	Reindexed int
	Failed    int
}

// Summary aggregates per-type reindex counts.
type Summary struct {
	Types     []Reindex
	Reindexed int
	Failed    int
}

// Summarize totals per-type counts.
func Summarize(parts []Reindex) Summary {
	s := Summary{Types: parts}
	for _, p := range parts {
		s.Reindexed += p.Reindexed
		s.Failed += p.Failed
	}
	return s
}
