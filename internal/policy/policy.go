// Package policy holds the authorization and visibility rules for complaints
// and their response threads. Every function is a pure decision over an
// explicit actor and resource; callers turn a false result into a
// permission error.
package policy

import "github.com/noah-isme/campus-complaint-api/internal/models"

// Capability names a role-level permission.
type Capability string

const (
	// CapViewAllComplaints allows reading complaints filed by anyone.
	CapViewAllComplaints Capability = "complaints.view_all"
	// CapTriageComplaints allows changing status and resolution of any complaint.
	CapTriageComplaints Capability = "complaints.triage"
	// CapDeleteAnyComplaint allows deleting complaints filed by others.
	CapDeleteAnyComplaint Capability = "complaints.delete_any"
	// CapPrivateResponses allows reading and writing staff-only responses.
	CapPrivateResponses Capability = "responses.private"
	// CapRespondToAny allows answering complaints filed by others.
	CapRespondToAny Capability = "responses.respond_any"
	// CapDeleteAnyResponse allows deleting responses written by others.
	CapDeleteAnyResponse Capability = "responses.delete_any"
	// CapManageTaxonomy allows creating, updating and deleting categories and statuses.
	CapManageTaxonomy Capability = "taxonomy.manage"
	// CapManageUsers allows administering accounts.
	CapManageUsers Capability = "users.manage"
	// CapViewReports allows reading the dashboard and reports.
	CapViewReports Capability = "reports.view"
)

var capabilities = map[models.Role]map[Capability]struct{}{
	models.RoleStudent: {},
	models.RoleStaff: {
		CapViewAllComplaints: {},
		CapTriageComplaints:  {},
		CapPrivateResponses:  {},
		CapRespondToAny:      {},
	},
	models.RoleAdmin: {
		CapViewAllComplaints:  {},
		CapTriageComplaints:   {},
		CapDeleteAnyComplaint: {},
		CapPrivateResponses:   {},
		CapRespondToAny:       {},
		CapDeleteAnyResponse:  {},
		CapManageTaxonomy:     {},
		CapManageUsers:        {},
		CapViewReports:        {},
	},
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// HasRole reports whether the actor holds exactly the given role.
func (a Actor) HasRole(role models.Role) bool {
	return a.Role == role
}

// IsStudent reports whether the actor is a student.
func (a Actor) IsStudent() bool {
	return a.HasRole(models.RoleStudent)
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool {
	return a.HasRole(models.RoleAdmin)
}

// IsStaffOrAdmin reports whether the actor belongs to the triage team.
func (a Actor) IsStaffOrAdmin() bool {
	return a.HasRole(models.RoleStaff) || a.HasRole(models.RoleAdmin)
}

// Authenticated reports whether the actor carries an identity and a known role.
func (a Actor) Authenticated() bool {
	_, known := capabilities[a.Role]
	return a.ID != 0 && known
}

// Can reports whether the actor's role grants the capability.
func (a Actor) Can(capability Capability) bool {
	caps, ok := capabilities[a.Role]
	if !ok {
		return false
	}
	_, granted := caps[capability]
	return granted
}

// CanViewComplaint allows the triage team and the complaint owner.
func CanViewComplaint(actor Actor, complaint models.Complaint) bool {
	if actor.Can(CapViewAllComplaints) {
		return true
	}
	return complaint.IsOwnedBy(actor.ID)
}

// CanMutateComplaint allows the triage team to change any field, and the owner
// to change non-triage fields while the complaint is unresolved.
func CanMutateComplaint(actor Actor, complaint models.Complaint, fields FieldSet) bool {
	if actor.Can(CapTriageComplaints) {
		return true
	}
	if !complaint.IsOwnedBy(actor.ID) || complaint.IsResolved {
		return false
	}
	return !fields.Has(FieldStatusID) && !fields.Has(FieldIsResolved)
}

// CanDeleteComplaint allows administrators and the owner.
func CanDeleteComplaint(actor Actor, complaint models.Complaint) bool {
	if actor.Can(CapDeleteAnyComplaint) {
		return true
	}
	return complaint.IsOwnedBy(actor.ID)
}

// CanViewResponse hides private responses from students, including the owner.
func CanViewResponse(actor Actor, complaint models.Complaint, response models.ComplaintResponse) bool {
	if actor.Can(CapPrivateResponses) {
		return true
	}
	return complaint.IsOwnedBy(actor.ID) && !response.IsPrivate
}

// CanCreateResponse allows the triage team, and the owner for public responses.
func CanCreateResponse(actor Actor, complaint models.Complaint, wantsPrivate bool) bool {
	if actor.Can(CapRespondToAny) {
		return !wantsPrivate || actor.Can(CapPrivateResponses)
	}
	return complaint.IsOwnedBy(actor.ID) && !wantsPrivate
}

// CanMutateResponse allows only the author, whatever their role.
func CanMutateResponse(actor Actor, response models.ComplaintResponse) bool {
	return response.IsAuthoredBy(actor.ID)
}

// CanDeleteResponse allows the author and administrators.
func CanDeleteResponse(actor Actor, response models.ComplaintResponse) bool {
	if actor.Can(CapDeleteAnyResponse) {
		return true
	}
	return response.IsAuthoredBy(actor.ID)
}

// CanSetPrivate reports whether the actor may mark a response private.
func CanSetPrivate(actor Actor) bool {
	return actor.Can(CapPrivateResponses)
}
