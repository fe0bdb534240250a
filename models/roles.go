package models

// Role is one of the fixed barangay organizational roles. The set is closed;
// administrators assign roles, the engine only reads them.
type Role string

const (
	RoleResident      Role = "resident"
	RoleSecretary     Role = "secretary"
	RoleChairman      Role = "chairman"
	RoleTanodHead     Role = "tanod_head"
	RoleKagawadPeace  Role = "kagawad_peace"
	RoleKagawadInfra  Role = "kagawad_infra"
	RoleKagawadHealth Role = "kagawad_health"
	RoleKagawadSocial Role = "kagawad_social"
	RoleKagawadSanit  Role = "kagawad_sanitation"
	RoleKagawadEnv    Role = "kagawad_environment"
	RoleLuponChair    Role = "lupon_chair"
	RoleLuponMember   Role = "lupon_member"
	RoleBHW           Role = "bhw"
	RoleSKChair       Role = "sk_chair"
	RoleVAWOfficer    Role = "vaw_officer"
	RoleBADACFocal    Role = "badac_focal"
	RoleBDRRMCFocal   Role = "bdrrmc_focal"
	RoleAnimalControl Role = "animal_control"
)

// FallbackRole is the universal assignment fallback when neither the primary
// nor the backup role of a category rule has an eligible holder.
const FallbackRole = RoleSecretary

// ReviewerRole decides the approval gate; AuthorityRole receives approved
// complaints and drives the lifecycle past intake.
const (
	ReviewerRole  = RoleSecretary
	AuthorityRole = RoleChairman
)

// assignableRoles is every role that may own a complaint. Residents file
// complaints; they never receive them.
var assignableRoles = map[Role]bool{
	RoleSecretary:     true,
	RoleChairman:      true,
	RoleTanodHead:     true,
	RoleKagawadPeace:  true,
	RoleKagawadInfra:  true,
	RoleKagawadHealth: true,
	RoleKagawadSocial: true,
	RoleKagawadSanit:  true,
	RoleKagawadEnv:    true,
	RoleLuponChair:    true,
	RoleLuponMember:   true,
	RoleBHW:           true,
	RoleSKChair:       true,
	RoleVAWOfficer:    true,
	RoleBADACFocal:    true,
	RoleBDRRMCFocal:   true,
	RoleAnimalControl: true,
}

// IsValid reports whether r is one of the enumerated roles.
func (r Role) IsValid() bool {
	return r == RoleResident || assignableRoles[r]
}

// IsAssignable reports whether a holder of r may own complaints.
func (r Role) IsAssignable() bool {
	return assignableRoles[r]
}

// IsOfficial reports whether r is any barangay official (not a resident).
func (r Role) IsOfficial() bool {
	return r != RoleResident && r.IsValid()
}

// CanManageComplaints reports whether r participates in the management
// workflow (approval gate or lifecycle actions).
func (r Role) CanManageComplaints() bool {
	return r == RoleSecretary || r == RoleChairman
}
