package access

// Request is what a permission gate sees before any object is loaded.
type Request struct {
	Caller Caller
	Method string
	Action Action
}

type Policy interface {
	Name() string
	HasPermission(req Request) bool
	HasObjectPermission(req Request, obj Object) bool
}

// AdminOrCreateOnly lets staff do everything. With AllowAnonymousCreate any
// caller may also create.
type AdminOrCreateOnly struct {
	AllowAnonymousCreate bool
}

func (AdminOrCreateOnly) Name() string { return "admin_or_create_only" }

func (p AdminOrCreateOnly) HasPermission(req Request) bool {
	if p.AllowAnonymousCreate && req.Action == ActionCreate {
		return true
	}

	return req.Caller.IsStaff()
}

func (AdminOrCreateOnly) HasObjectPermission(Request, Object) bool { return true }

// CompanyOwner admits ADMIN-role or staff callers, and on objects only the
// company's owner.
type CompanyOwner struct{}

func (CompanyOwner) Name() string { return "company_owner" }

func (CompanyOwner) HasPermission(req Request) bool {
	return req.Caller.IsAdmin() || req.Caller.IsStaff()
}

func (CompanyOwner) HasObjectPermission(req Request, obj Object) bool {
	if !req.Caller.Authenticated || obj.Kind != KindCompany || obj.OwnerID == nil {
		return false
	}

	return *obj.OwnerID == req.Caller.UserID
}

// CompanyEmployee admits any authenticated caller, and on objects only
// members of that company.
type CompanyEmployee struct{}

func (CompanyEmployee) Name() string { return "company_employee" }

func (CompanyEmployee) HasPermission(req Request) bool {
	return req.Caller.Authenticated
}

func (CompanyEmployee) HasObjectPermission(req Request, obj Object) bool {
	return obj.Kind == KindCompany && req.Caller.InCompany(obj.ID)
}

// ProfileOwnerOrAdmin admits the profile's owner, or an ADMIN of the same
// company.
type ProfileOwnerOrAdmin struct{}

func (ProfileOwnerOrAdmin) Name() string { return "profile_owner_or_admin" }

func (ProfileOwnerOrAdmin) HasPermission(req Request) bool {
	return req.Caller.Authenticated
}

func (ProfileOwnerOrAdmin) HasObjectPermission(req Request, obj Object) bool {
	if obj.Kind != KindUser || !req.Caller.Authenticated {
		return false
	}

	if obj.ID == req.Caller.UserID {
		return true
	}

	return req.Caller.IsAdmin() && obj.CompanyID != nil && req.Caller.InCompany(*obj.CompanyID)
}
