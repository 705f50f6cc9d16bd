package access

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEndpoint = errors.New("endpoint not in authorization table")
	ErrMissingDefault  = errors.New("endpoint has no default policy")
)

// Rules declares the policies guarding one endpoint. Default applies to
// every action without an entry in ByAction.
type Rules struct {
	Default  []Policy
	ByAction map[Action][]Policy
}

// Table is the resolved endpoint -> action -> policies mapping. It is
// immutable once built.
type Table struct {
	endpoints map[Endpoint]Rules
}

func NewTable(entries map[Endpoint]Rules) (*Table, error) {
	t := &Table{endpoints: make(map[Endpoint]Rules, len(entries))}

	for ep, rules := range entries {
		if len(rules.Default) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingDefault, ep)
		}

		byAction := make(map[Action][]Policy, len(rules.ByAction))
		for action, policies := range rules.ByAction {
			if len(policies) == 0 {
				return nil, fmt.Errorf("endpoint %s action %s: empty policy list", ep, action)
			}
			byAction[action] = append([]Policy(nil), policies...)
		}

		t.endpoints[ep] = Rules{
			Default:  append([]Policy(nil), rules.Default...),
			ByAction: byAction,
		}
	}

	return t, nil
}

// Policies resolves the policies for an action, falling back to the
// endpoint's default.
func (t *Table) Policies(ep Endpoint, action Action) ([]Policy, error) {
	rules, ok := t.endpoints[ep]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, ep)
	}

	if policies, ok := rules.ByAction[action]; ok {
		return policies, nil
	}

	return rules.Default, nil
}

type TableOptions struct {
	// AllowAnonymousSignup lets any caller create users through /users/.
	AllowAnonymousSignup bool
}

func DefaultTable(opts TableOptions) (*Table, error) {
	owner := []Policy{CompanyOwner{}}
	employee := []Policy{CompanyEmployee{}}

	return NewTable(map[Endpoint]Rules{
		EndpointUsers: {
			Default: []Policy{AdminOrCreateOnly{AllowAnonymousCreate: opts.AllowAnonymousSignup}},
		},
		EndpointCompany: {
			Default: owner,
			ByAction: map[Action][]Policy{
				ActionCreate:        owner,
				ActionUpdate:        owner,
				ActionPartialUpdate: owner,
				ActionDestroy:       owner,
				ActionRetrieve:      owner,
				ActionList:          employee,
			},
		},
		EndpointWorkers: {
			Default: owner,
		},
		EndpointProfileUpdate: {
			Default: []Policy{ProfileOwnerOrAdmin{}},
		},
		EndpointOffices: {
			Default: owner,
			ByAction: map[Action][]Policy{
				ActionList:     employee,
				ActionRetrieve: employee,
			},
		},
	})
}
