package domain

// Employee is the directory view of a staff member. The directory itself is
// owned by another service; this core only reads it.
type Employee struct {
	ID         string
	Name       string
	Role       string
	Department string
	Level      int
	Active     bool
}

// Role represents an actor's access level
type Role string

const (
	// RoleAdmin may decide any approval and administer accounts
	RoleAdmin Role = "admin"

	// RoleOperator can record ledger entries and create requests
	RoleOperator Role = "operator"

	// RoleViewer can only view resources, no mutations
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanMutate checks if the role may create or change records
func (r Role) CanMutate() bool {
	return r == RoleAdmin || r == RoleOperator
}

// HasApprovalAuthority reports whether the role may decide approvals it is
// not the designated approver of.
func (r Role) HasApprovalAuthority() bool {
	return r == RoleAdmin
}

// Actor is the authenticated identity performing an operation. It is passed
// explicitly to every operation that authorizes or attributes a change.
type Actor struct {
	EmployeeID string
	Role       Role
}

// SystemActor attributes changes made by background jobs.
var SystemActor = Actor{EmployeeID: "system", Role: RoleAdmin}

// Validate checks the actor can be attributed.
func (a Actor) Validate() error {
	if a.EmployeeID == "" {
		return ErrUnauthorized
	}
	if !a.Role.IsValid() {
		return ErrUnauthorized
	}
	return nil
}

// RequireMutate fails with ErrUnauthorized unless the actor may write.
func (a Actor) RequireMutate() error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !a.Role.CanMutate() {
		return ErrUnauthorized
	}
	return nil
}
