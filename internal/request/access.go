package request

import "github.com/cobom/geoloc193/internal/models"

// Caller identifies an authenticated staff member.
type Caller struct {
	ID   uint64
	Role models.Role
}

// SeesAll reports whether the caller may list and read every record.
// Agents only see records they own.
func (c Caller) SeesAll() bool {
	return c.Role == models.RoleSupervisor || c.Role == models.RoleAdministrator
}

func (c Caller) CanView(rec *Request) bool {
	return c.SeesAll() || rec.OwnerID == c.ID
}

// CanMutate covers status, coordinate and address mutations on a record.
func (c Caller) CanMutate(rec *Request) bool {
	return c.CanView(rec)
}

// CanListUsers allows supervisors a read-only staff list.
func (c Caller) CanListUsers() bool {
	return c.Role == models.RoleSupervisor || c.Role == models.RoleAdministrator
}

func (c Caller) CanManageUsers() bool {
	return c.Role == models.RoleAdministrator
}

// CanDeleteUser forbids administrators from deleting their own account.
func (c Caller) CanDeleteUser(targetID uint64) bool {
	return c.CanManageUsers() && c.ID != targetID
}
