// Package workflow holds the onboarding request lifecycle: the status catalogue, the
// declared transitions between statuses and the guards that decide whether a transition
// may happen.
package workflow

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed status_table.yaml
var defaultTableYAML []byte

// StatusDefinition is the static description of one status.
type StatusDefinition struct {
	Status          domain.RequestStatus `json:"status"`
	Label           string               `json:"label"`
	Description     string               `json:"description"`
	ClientMessage   string               `json:"clientMessage"`
	VisibleToClient bool                 `json:"visibleToClient"`
	Step            string               `json:"step,omitempty"`
	Terminal        bool                 `json:"terminal"`
	AgentEditable   bool                 `json:"agentEditable"`

	RequiresCTO              bool `json:"requiresCTO"`
	RequiresN1               bool `json:"requiresN1"`
	RequiresN2               bool `json:"requiresN2"`
	RequiresCompletePayload  bool `json:"requiresCompletePayload"`
	RequiresErrorFeedback    bool `json:"requiresErrorFeedback"`
	RequiresResolvedFeedback bool `json:"requiresResolvedFeedback"`
	RequiresDeposit          bool `json:"requiresDeposit"`

	NotifyReviewers bool `json:"notifyReviewers"`
	NotifyClient    bool `json:"notifyClient"`
	RequiresKbis    bool `json:"requiresKbis"`
	Integration     bool `json:"integration"`
}

// RequiredRole returns the single reviewer role allowed to enter the status, if any.
func (d StatusDefinition) RequiredRole() (domain.Role, bool) {
	switch {
	case d.RequiresCTO:
		return domain.RoleCTO, true
	case d.RequiresN1:
		return domain.RoleN1Reviewer, true
	case d.RequiresN2:
		return domain.RoleN2Reviewer, true
	}
	return "", false
}

// Transition is one declared edge of the lifecycle.
type Transition struct {
	Action string               `json:"action"`
	From   domain.RequestStatus `json:"from"`
	To     domain.RequestStatus `json:"to"`
	Roles  []domain.Role        `json:"roles"`
}

// Allows reports whether role may perform the transition.
func (t Transition) Allows(role domain.Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Table is an immutable, validated lifecycle definition.
type Table struct {
	statuses map[domain.RequestStatus]StatusDefinition
	byFrom   map[domain.RequestStatus][]Transition
	edges    []Transition
}

type document struct {
	Statuses    []statusDoc     `yaml:"statuses"`
	Transitions []transitionDoc `yaml:"transitions"`
}

type statusDoc struct {
	Code            string `yaml:"code"`
	Label           string `yaml:"label"`
	Description     string `yaml:"description"`
	ClientMessage   string `yaml:"clientMessage"`
	VisibleToClient bool   `yaml:"visibleToClient"`
	Step            string `yaml:"step"`
	Terminal        bool   `yaml:"terminal"`
	AgentEditable   bool   `yaml:"agentEditable"`

	RequiresCTO              bool `yaml:"requiresCTO"`
	RequiresN1               bool `yaml:"requiresN1"`
	RequiresN2               bool `yaml:"requiresN2"`
	RequiresCompletePayload  bool `yaml:"requiresCompletePayload"`
	RequiresErrorFeedback    bool `yaml:"requiresErrorFeedback"`
	RequiresResolvedFeedback bool `yaml:"requiresResolvedFeedback"`
	RequiresDeposit          bool `yaml:"requiresDeposit"`

	NotifyReviewers bool `yaml:"notifyReviewers"`
	NotifyClient    bool `yaml:"notifyClient"`
	RequiresKbis    bool `yaml:"requiresKbis"`
	Integration     bool `yaml:"integration"`
}

type transitionDoc struct {
	Action string   `yaml:"action"`
	From   []string `yaml:"from"`
	To     string   `yaml:"to"`
	Roles  []string `yaml:"roles"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded lifecycle table. It is parsed once.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(defaultTableYAML)
	})
	return defaultTable, defaultErr
}

// MustDefault is Default for program start-up; it panics on an invalid table.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse decodes and validates a lifecycle table.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode status table: %w", err)
	}
	return newTable(doc)
}

func newTable(doc document) (*Table, error) {
	t := &Table{
		statuses: make(map[domain.RequestStatus]StatusDefinition, len(doc.Statuses)),
		byFrom:   make(map[domain.RequestStatus][]Transition),
	}

	for _, sd := range doc.Statuses {
		status, err := domain.ParseRequestStatus(sd.Code)
		if err != nil {
			return nil, fmt.Errorf("status table: %w", err)
		}
		if _, dup := t.statuses[status]; dup {
			return nil, fmt.Errorf("status table: %s defined more than once", sd.Code)
		}
		def := StatusDefinition{
			Status:                   status,
			Label:                    sd.Label,
			Description:              sd.Description,
			ClientMessage:            sd.ClientMessage,
			VisibleToClient:          sd.VisibleToClient,
			Step:                     sd.Step,
			Terminal:                 sd.Terminal,
			AgentEditable:            sd.AgentEditable,
			RequiresCTO:              sd.RequiresCTO,
			RequiresN1:               sd.RequiresN1,
			RequiresN2:               sd.RequiresN2,
			RequiresCompletePayload:  sd.RequiresCompletePayload,
			RequiresErrorFeedback:    sd.RequiresErrorFeedback,
			RequiresResolvedFeedback: sd.RequiresResolvedFeedback,
			RequiresDeposit:          sd.RequiresDeposit,
			NotifyReviewers:          sd.NotifyReviewers,
			NotifyClient:             sd.NotifyClient,
			RequiresKbis:             sd.RequiresKbis,
			Integration:              sd.Integration,
		}
		if n := countTrue(def.RequiresCTO, def.RequiresN1, def.RequiresN2); n > 1 {
			return nil, fmt.Errorf("status table: %s requires more than one reviewer role", sd.Code)
		}
		t.statuses[status] = def
	}
	for _, status := range domain.AllStatuses() {
		if _, ok := t.statuses[status]; !ok {
			return nil, fmt.Errorf("status table: %s is not defined", status)
		}
	}

	type edgeKey struct {
		from   domain.RequestStatus
		action string
	}
	seen := make(map[edgeKey]struct{})

	for _, td := range doc.Transitions {
		if td.Action == "" {
			return nil, errors.New("status table: transition without action")
		}
		to, err := domain.ParseRequestStatus(td.To)
		if err != nil {
			return nil, fmt.Errorf("status table: transition %q: %w", td.Action, err)
		}
		if len(td.Roles) == 0 {
			return nil, fmt.Errorf("status table: transition %q has no roles", td.Action)
		}
		roles := make([]domain.Role, 0, len(td.Roles))
		for _, r := range td.Roles {
			role := domain.Role(r)
			if !role.IsValid() {
				return nil, fmt.Errorf("status table: transition %q: unknown role %q", td.Action, r)
			}
			roles = append(roles, role)
		}
		if len(td.From) == 0 {
			return nil, fmt.Errorf("status table: transition %q has no source status", td.Action)
		}
		for _, code := range td.From {
			from, err := domain.ParseRequestStatus(code)
			if err != nil {
				return nil, fmt.Errorf("status table: transition %q: %w", td.Action, err)
			}
			if t.statuses[from].Terminal {
				return nil, fmt.Errorf("status table: terminal status %s has outbound transition %q", code, td.Action)
			}
			key := edgeKey{from: from, action: td.Action}
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("status table: action %q declared twice from %s", td.Action, code)
			}
			seen[key] = struct{}{}

			edge := Transition{Action: td.Action, From: from, To: to, Roles: roles}
			t.edges = append(t.edges, edge)
			t.byFrom[from] = append(t.byFrom[from], edge)
		}
	}

	if err := t.checkReachability(); err != nil {
		return nil, err
	}
	return t, nil
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func (t *Table) reachableFrom(start domain.RequestStatus) map[domain.RequestStatus]bool {
	visited := map[domain.RequestStatus]bool{start: true}
	queue := []domain.RequestStatus{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range t.byFrom[current] {
			if !visited[edge.To] {
				visited[edge.To] = true
				queue = append(queue, edge.To)
			}
		}
	}
	return visited
}

func (t *Table) checkReachability() error {
	fromDraft := t.reachableFrom(domain.StatusDraft)
	for _, status := range domain.AllStatuses() {
		if !fromDraft[status] {
			return fmt.Errorf("status table: %s is not reachable from %s", status, domain.StatusDraft)
		}
	}

	afterSubmit := t.reachableFrom(domain.StatusSubmitted)
	for _, edge := range t.edges {
		if edge.To == domain.StatusDraft && afterSubmit[edge.From] {
			return fmt.Errorf("status table: %s returns to %s after submission", edge.From, domain.StatusDraft)
		}
	}
	return nil
}

// Status returns the definition of s.
func (t *Table) Status(s domain.RequestStatus) (StatusDefinition, bool) {
	def, ok := t.statuses[s]
	return def, ok
}

// Statuses returns every definition in code order.
func (t *Table) Statuses() []StatusDefinition {
	out := make([]StatusDefinition, 0, len(t.statuses))
	for _, def := range t.statuses {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

// Transitions returns every declared edge.
func (t *Table) Transitions() []Transition {
	return append([]Transition(nil), t.edges...)
}

// From returns the edges leaving s.
func (t *Table) From(s domain.RequestStatus) []Transition {
	return append([]Transition(nil), t.byFrom[s]...)
}

// Edge returns the declared edge from -> to. When several actions connect the same
// pair the first declared one wins.
func (t *Table) Edge(from, to domain.RequestStatus) (Transition, bool) {
	for _, edge := range t.byFrom[from] {
		if edge.To == to {
			return edge, true
		}
	}
	return Transition{}, false
}

// EdgeForAction returns the edge taken by action from the given status.
func (t *Table) EdgeForAction(from domain.RequestStatus, action string) (Transition, bool) {
	for _, edge := range t.byFrom[from] {
		if edge.Action == action {
			return edge, true
		}
	}
	return Transition{}, false
}

// IsTerminal reports whether s has no way out.
func (t *Table) IsTerminal(s domain.RequestStatus) bool {
	return t.statuses[s].Terminal
}
