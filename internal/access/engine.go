package access

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

type Engine struct {
	table *Table
}

func NewEngine(table *Table) *Engine {
	return &Engine{table: table}
}

// Authorize runs the permission gate: every resolved policy must allow.
func (e *Engine) Authorize(ep Endpoint, req Request) error {
	policies, err := e.table.Policies(ep, req.Action)
	if err != nil {
		return err
	}

	for _, p := range policies {
		if !p.HasPermission(req) {
			return deny(req.Caller, p)
		}
	}

	return nil
}

// AuthorizeObject runs the object gate against a loaded record.
func (e *Engine) AuthorizeObject(ep Endpoint, req Request, obj Object) error {
	policies, err := e.table.Policies(ep, req.Action)
	if err != nil {
		return err
	}

	for _, p := range policies {
		if !p.HasObjectPermission(req, obj) {
			return deny(req.Caller, p)
		}
	}

	return nil
}

func deny(c Caller, p Policy) error {
	if !c.Authenticated {
		return fmt.Errorf("%w (%s)", ErrNotAuthenticated, p.Name())
	}

	return fmt.Errorf("%w (%s)", ErrPermissionDenied, p.Name())
}
