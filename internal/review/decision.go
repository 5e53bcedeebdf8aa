package review

import (
	"fmt"
	"slices"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

// State is a state of the reconciliation of a pull request.
type State int

const (
	StatePending State = iota
	// StateBlocked means at least one changed module has no maintainer
	// that can approve it.
	StateBlocked
	StateEvaluating
	StateCovered
	StateNotCovered
	// StateStale means the pull request changed during the evaluation.
	StateStale
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBlocked:
		return "blocked"
	case StateEvaluating:
		return "evaluating"
	case StateCovered:
		return "covered"
	case StateNotCovered:
		return "not_covered"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StatePending:    {StateBlocked, StateEvaluating},
	StateEvaluating: {StateCovered, StateNotCovered},
	StateCovered:    {StateStale},
	StateNotCovered: {StateStale},
	StateBlocked:    {StateStale},
}

// stateMachine records the state transitions of a reconciliation.
// Transitions that are not allowed cause a panic.
type stateMachine struct {
	history []State
}

func newStateMachine() *stateMachine {
	return &stateMachine{history: []State{StatePending}}
}

func (m *stateMachine) Current() State {
	return m.history[len(m.history)-1]
}

func (m *stateMachine) Transition(to State) {
	from := m.Current()
	if !slices.Contains(transitions[from], to) {
		panic(fmt.Sprintf("invalid reconciliation state transition from %s to %s", from, to))
	}

	m.history = append(m.history, to)
}

// ActionKind is the type of a change done on GitHub.
type ActionKind string

const (
	ActionApprove ActionKind = "approve"
	// ActionMerge merges the pull request, if it succeeds the
	// Policy.AutoMergedLabel is added.
	ActionMerge ActionKind = "merge"
	// ActionRevokeApproval requests changes to replace a previous
	// approval of the bot.
	ActionRevokeApproval ActionKind = "revoke_approval"
	ActionAddLabel       ActionKind = "add_label"
	// ActionDismissApproval is only done by DismissApprovals, it is
	// never the result of Decide.
	ActionDismissApproval ActionKind = "dismiss_approval"
)

type Action struct {
	Kind  ActionKind
	Label string
}

func (a Action) String() string {
	if a.Label != "" {
		return string(a.Kind) + ":" + a.Label
	}
	return string(a.Kind)
}

// Policy configures the actions that are derived from a reconciliation.
type Policy struct {
	MergeMethod          string
	CITriggerLabel       string
	LowCIPriorityLabel   string
	AutoMergedLabel      string
	ManyModulesThreshold int
}

// DecisionInput is the evaluation result of a pull request.
type DecisionInput struct {
	// InitialHeadSHA is the head commit when the evaluation started.
	InitialHeadSHA string
	// CurrentHeadSHA is the head commit after the evaluation finished.
	CurrentHeadSHA string

	Orphans  set.Set[string]
	Coverage *Coverage

	// BotApproved is true if the latest review of the bot user approved
	// the pull request.
	BotApproved bool

	Labels []string

	// AuthorHasMergedPR is only evaluated when CITriggerLabel is missing.
	AuthorHasMergedPR bool
	// AuthorIsMaintainer is true if the author maintains any module of
	// the registry.
	AuthorIsMaintainer bool
}

// Decision is the result of Decide.
type Decision struct {
	State State
	// Transitions contains all states that were passed, starting with
	// StatePending.
	Transitions []State
	Actions     []Action
}

// Has returns true if the decision contains an action of the given kind.
func (d *Decision) Has(kind ActionKind) bool {
	return slices.ContainsFunc(d.Actions, func(a Action) bool {
		return a.Kind == kind
	})
}

// Decide returns the actions that must be done for a pull request.
//
// If the head commit changed, the result is StateStale without any
// actions.
// If modules without maintainers were changed, the result is StateBlocked,
// the pull request is neither approved, merged nor is an approval revoked.
// Labels are still added.
func Decide(in *DecisionInput, policy *Policy) *Decision {
	sm := newStateMachine()

	if in.Orphans.Len() > 0 {
		sm.Transition(StateBlocked)
	} else {
		sm.Transition(StateEvaluating)
		if in.Coverage.AllCovered() {
			sm.Transition(StateCovered)
		} else {
			sm.Transition(StateNotCovered)
		}
	}

	if in.InitialHeadSHA != in.CurrentHeadSHA {
		sm.Transition(StateStale)
		return &Decision{State: sm.Current(), Transitions: sm.history}
	}

	var actions []Action

	switch sm.Current() {
	case StateCovered:
		if !in.BotApproved {
			actions = append(actions, Action{Kind: ActionApprove})
		}
		actions = append(actions, Action{Kind: ActionMerge})

	case StateNotCovered:
		if in.BotApproved {
			actions = append(actions, Action{Kind: ActionRevokeApproval})
		}
	}

	if policy.CITriggerLabel != "" &&
		!slices.Contains(in.Labels, policy.CITriggerLabel) &&
		in.AuthorHasMergedPR &&
		(in.Coverage.AnyCovered() || in.AuthorIsMaintainer) {
		actions = append(actions, Action{Kind: ActionAddLabel, Label: policy.CITriggerLabel})
	}

	if policy.LowCIPriorityLabel != "" &&
		!slices.Contains(in.Labels, policy.LowCIPriorityLabel) &&
		len(in.Coverage.Modules) > policy.ManyModulesThreshold {
		actions = append(actions, Action{Kind: ActionAddLabel, Label: policy.LowCIPriorityLabel})
	}

	return &Decision{
		State:       sm.Current(),
		Transitions: sm.history,
		Actions:     actions,
	}
}
