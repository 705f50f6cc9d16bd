package access

import "net/http"

type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

// ActionFor maps an HTTP method on a collection (hasID=false) or a member
// (hasID=true) route to the action it performs.
func ActionFor(method string, hasID bool) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		if hasID {
			return ActionRetrieve, true
		}
		return ActionList, true
	case http.MethodPost:
		if hasID {
			return "", false
		}
		return ActionCreate, true
	case http.MethodPut:
		return ActionUpdate, hasID
	case http.MethodPatch:
		return ActionPartialUpdate, hasID
	case http.MethodDelete:
		return ActionDestroy, hasID
	default:
		return "", false
	}
}

type Endpoint string

const (
	EndpointUsers         Endpoint = "users"
	EndpointCompany       Endpoint = "company"
	EndpointWorkers       Endpoint = "workers"
	EndpointProfileUpdate Endpoint = "profile_update"
	EndpointOffices       Endpoint = "offices"
)
