package model

// Role names stored on users. program_manager and quarantine_general_supervisor
// span both domains.
const (
	RoleProgramManager              = "program_manager"
	RoleQuarantineGeneralSupervisor = "quarantine_general_supervisor"

	RoleLabManager          = "lab_manager"
	RoleSectionSupervisor   = "section_supervisor"
	RoleLabSpecialist       = "lab_specialist"
	RoleReceptionSpecialist = "reception_specialist"
	RoleInventoryOfficer    = "inventory_officer"

	RoleQuarantineSupervisor = "quarantine_supervisor"
	RoleVeterinarian         = "veterinarian"
	RoleDataEntry            = "data_entry"
)

// IsGlobalRole reports whether role may sign in to either domain.
func IsGlobalRole(role string) bool {
	return role == RoleProgramManager || role == RoleQuarantineGeneralSupervisor
}

var roleDomains = map[string]Domain{
	RoleLabManager:           DomainLab,
	RoleSectionSupervisor:    DomainLab,
	RoleLabSpecialist:        DomainLab,
	RoleReceptionSpecialist:  DomainLab,
	RoleInventoryOfficer:     DomainLab,
	RoleQuarantineSupervisor: DomainVet,
	RoleVeterinarian:         DomainVet,
	RoleDataEntry:            DomainVet,
}

// RoleAllowedIn reports whether a user with role may be stored in domain d.
func RoleAllowedIn(role string, d Domain) bool {
	if IsGlobalRole(role) {
		return true
	}
	owner, ok := roleDomains[role]
	return ok && owner == d
}
