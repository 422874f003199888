package action

// Principal is the authenticated actor executing an action. Immutable once
// attached to a context; absent for system or async-triggered contexts.
type Principal struct {
	ID            int64
	AccountID     string
	AccountLocked bool
}

// ActionContext is the per-invocation bag handed through the pipeline: the
// request params, a typed scratch State written by validation and read by
// execution, and an optional Principal.
//
// A context is owned by exactly one pipeline invocation; it is never shared
// across requests. The variant without a principal is produced by NewContext,
// the variant with one by NewPrincipalContext; the controller never inspects
// types at runtime to tell them apart.
type ActionContext[P any] struct {
	params    P
	state     *State
	principal *Principal
}

// NewContext creates a plain context carrying only params. Used for async and
// system-triggered invocations.
func NewContext[P any](params P) *ActionContext[P] {
	return &ActionContext[P]{
		params: params,
		state:  NewState(),
	}
}

// NewPrincipalContext creates a context bound to an authenticated principal.
func NewPrincipalContext[P any](params P, principal Principal) *ActionContext[P] {
	ac := NewContext(params)
	ac.principal = &principal
	return ac
}

// Params returns the request payload.
func (c *ActionContext[P]) Params() P {
	return c.params
}

// State returns the scratch side-channel shared across pipeline stages.
func (c *ActionContext[P]) State() *State {
	return c.state
}

// Principal returns the authenticated actor, or false when the context was
// created without one.
func (c *ActionContext[P]) Principal() (Principal, bool) {
	if c.principal == nil {
		return Principal{}, false
	}
	return *c.principal, true
}

// TaskHandlerContext wraps an ActionContext with an ordered list of
// UserActionRequests accumulated during execution. The list is drained by the
// controller after the main transaction commits; requests are handed off to
// the TaskHandler exactly once.
type TaskHandlerContext[P any] struct {
	*ActionContext[P]
	requests []UserActionRequest
}

// NewTaskHandlerContext wraps a context for a task-handler execution strategy.
func NewTaskHandlerContext[P any](ac *ActionContext[P]) *TaskHandlerContext[P] {
	return &TaskHandlerContext[P]{ActionContext: ac}
}

// Enqueue appends a deferred side-effect request. Ownership of the request
// transfers to the task queue at drain time.
func (c *TaskHandlerContext[P]) Enqueue(req UserActionRequest) {
	c.requests = append(c.requests, req)
}

// UserActionRequests returns the accumulated requests in enqueue order.
func (c *TaskHandlerContext[P]) UserActionRequests() []UserActionRequest {
	return c.requests
}
