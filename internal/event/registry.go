package event

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"hyperdbg/internal/symstream"
)

// TagStartSeed is added to every internally-allocated tag so the first
// user-visible tag is 1; grounded on the real debugger's
// DebuggerEventTagStartSeed (0x1000000, Constants.h).
const TagStartSeed = 0x1000000

var ErrUnknownTag = errors.New("unknown event tag")

// Registry holds every registered Event and dispatches firings to
// their action lists. The tag counter is a single atomic so register()
// never needs the table lock just to mint an id.
type Registry struct {
	mu     sync.RWMutex
	events map[uint64]*Event
	nextID atomic.Uint64
}

func NewRegistry() *Registry {
	r := &Registry{events: map[uint64]*Event{}}
	r.nextID.Store(TagStartSeed)
	return r
}

// Register allocates the next tag, appends a new per-kind Event, and
// returns the user-visible id (tag - TagStartSeed).
func (r *Registry) Register(kind Kind, condition *symstream.CompiledScript, context interface{}, shortCircuit bool) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(kind, condition, context, shortCircuit)
}

func (r *Registry) registerLocked(kind Kind, condition *symstream.CompiledScript, context interface{}, shortCircuit bool) uint64 {
	tag := r.nextID.Add(1)
	r.events[tag] = &Event{
		Tag:             tag,
		Kind:            kind,
		ConditionScript: condition,
		Context:         context,
		State:           StateEnabled,
		ShortCircuit:    shortCircuit,
	}
	return tag - TagStartSeed
}

func (r *Registry) internalTag(userTag uint64) uint64 { return userTag + TagStartSeed }

// AddAction appends action to userTag's event.
func (r *Registry) AddAction(userTag uint64, action Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addActionLocked(userTag, action)
}

func (r *Registry) addActionLocked(userTag uint64, action Action) error {
	ev, ok := r.events[r.internalTag(userTag)]
	if !ok {
		return errors.Wrapf(ErrUnknownTag, "%d", userTag)
	}
	ev.Actions = append(ev.Actions, action)
	return nil
}

// ModifyOp names what Modify does to the targeted tag(s).
type ModifyOp struct{ op int }

var (
	ModifyEnable  = ModifyOp{0}
	ModifyDisable = ModifyOp{1}
	ModifyClear   = ModifyOp{2}
)

// Modify applies op to one tag, or to every tag when all is true. On
// ModifyClear the event is dropped from the table entirely; the caller
// (internal/breakpoint or the hostio hook layer) is responsible for
// tearing down the matching hardware/software hook first.
func (r *Registry) Modify(userTag uint64, all bool, op ModifyOp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modifyLocked(userTag, all, op)
}

func (r *Registry) modifyLocked(userTag uint64, all bool, op ModifyOp) error {
	if all {
		for tag, ev := range r.events {
			r.applyOp(ev, op)
			if op == ModifyClear {
				delete(r.events, tag)
			}
		}
		return nil
	}
	tag := r.internalTag(userTag)
	ev, ok := r.events[tag]
	if !ok {
		return errors.Wrapf(ErrUnknownTag, "%d", userTag)
	}
	r.applyOp(ev, op)
	if op == ModifyClear {
		delete(r.events, tag)
	}
	return nil
}

func (r *Registry) applyOp(ev *Event, op ModifyOp) {
	switch op {
	case ModifyEnable:
		ev.State = StateEnabled
	case ModifyDisable:
		ev.State = StateDisabled
	case ModifyClear:
		ev.State = StateCleared
	}
}

// QueryState returns userTag's current State, or false if no event
// has that tag.
func (r *Registry) QueryState(userTag uint64) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[r.internalTag(userTag)]
	if !ok {
		return State{}, false
	}
	return ev.State, true
}

// Lookup returns the live Event for userTag, or nil if absent. Used by
// internal/command (the events command) to read the condition script and
// action list without copying them.
func (r *Registry) Lookup(userTag uint64) *Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events[r.internalTag(userTag)]
}

// ByKind returns every Enabled event of the given Kind, for breakpoint/
// hook installation passes that need to walk one kind at a time.
func (r *Registry) ByKind(kind Kind) []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Event
	for _, ev := range r.events {
		if ev.Kind == kind && ev.State == StateEnabled {
			out = append(out, ev)
		}
	}
	return out
}

// Enumerate returns every registered Event in tag order, for listing
// commands such as `events`.
func (r *Registry) Enumerate() []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Batch is the locked view of a Registry handed to a Rebuild callback;
// its methods assume the caller already holds the table lock, unlike
// the exported Register/AddAction/Modify.
type Batch struct{ r *Registry }

func (b Batch) Register(kind Kind, condition *symstream.CompiledScript, context interface{}, shortCircuit bool) uint64 {
	return b.r.registerLocked(kind, condition, context, shortCircuit)
}

func (b Batch) AddAction(userTag uint64, action Action) error {
	return b.r.addActionLocked(userTag, action)
}

func (b Batch) Modify(userTag uint64, all bool, op ModifyOp) error {
	return b.r.modifyLocked(userTag, all, op)
}

// Rebuild runs fn against a locked Batch view, matching the "all cores
// halted" broadcast phase a debugger uses to mutate shared event state:
// every mutation inside fn is atomic with respect to Dispatch/Lookup,
// which take the same lock.
func (r *Registry) Rebuild(fn func(Batch)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(Batch{r: r})
}
