package domain

// Role is the role a participant holds inside a conference.
type Role string

const (
	RoleJudge                      Role = "Judge"
	RoleIndividual                 Role = "Individual"
	RoleRepresentative             Role = "Representative"
	RoleJudicialOfficeHolder       Role = "JudicialOfficeHolder"
	RoleQuickLinkParticipant       Role = "QuickLinkParticipant"
	RoleQuickLinkObserver          Role = "QuickLinkObserver"
	RoleStaffMember                Role = "StaffMember"
	RoleCaseAdmin                  Role = "CaseAdmin"
	RoleVideoHearingsOfficer       Role = "VideoHearingsOfficer"
	RoleHearingFacilitationSupport Role = "HearingFacilitationSupport"
)

// UserRole is the account role reported by the identity provider.
type UserRole int

const (
	UserRoleNone UserRole = iota
	UserRoleJudge
	UserRoleIndividual
	UserRoleRepresentative
	UserRoleJudicialOfficeHolder
	UserRoleQuickLinkParticipant
	UserRoleQuickLinkObserver
	UserRoleStaffMember
	UserRoleCaseAdmin
	UserRoleVideoHearingsOfficer
	UserRoleHearingFacilitationSupport
	userRoleCount
)

// AppRole is the role the application authorises against.
type AppRole string

const (
	AppRoleUnmapped             AppRole = ""
	AppRoleCitizen              AppRole = "Citizen"
	AppRoleJudge                AppRole = "Judge"
	AppRoleRepresentative       AppRole = "Representative"
	AppRoleQuickLinkParticipant AppRole = "QuickLinkParticipant"
	AppRoleQuickLinkObserver    AppRole = "QuickLinkObserver"
	AppRoleVhOfficer            AppRole = "VhOfficer"
	AppRoleCaseAdmin            AppRole = "CaseAdmin"
	AppRoleJudicialOfficeHolder AppRole = "JudicialOfficeHolder"
	AppRoleStaffMember          AppRole = "StaffMember"
)

var appRoleByUserRole = [...]AppRole{
	UserRoleNone:                       AppRoleUnmapped,
	UserRoleJudge:                      AppRoleJudge,
	UserRoleIndividual:                 AppRoleCitizen,
	UserRoleRepresentative:             AppRoleRepresentative,
	UserRoleJudicialOfficeHolder:       AppRoleJudicialOfficeHolder,
	UserRoleQuickLinkParticipant:       AppRoleQuickLinkParticipant,
	UserRoleQuickLinkObserver:          AppRoleQuickLinkObserver,
	UserRoleStaffMember:                AppRoleStaffMember,
	UserRoleCaseAdmin:                  AppRoleCaseAdmin,
	UserRoleVideoHearingsOfficer:       AppRoleVhOfficer,
	UserRoleHearingFacilitationSupport: AppRoleVhOfficer,
}

// Both directions fail to compile when a UserRole is added without a table entry.
var (
	_ [len(appRoleByUserRole) - int(userRoleCount)]struct{}
	_ [int(userRoleCount) - len(appRoleByUserRole)]struct{}
)

// ToAppRole maps an account role onto the application role table.
func (r UserRole) ToAppRole() AppRole {
	if r < 0 || r >= userRoleCount {
		return AppRoleUnmapped
	}
	return appRoleByUserRole[r]
}

var userRoleNames = map[string]UserRole{
	"Judge":                      UserRoleJudge,
	"Individual":                 UserRoleIndividual,
	"Representative":             UserRoleRepresentative,
	"JudicialOfficeHolder":       UserRoleJudicialOfficeHolder,
	"QuickLinkParticipant":       UserRoleQuickLinkParticipant,
	"QuickLinkObserver":          UserRoleQuickLinkObserver,
	"StaffMember":                UserRoleStaffMember,
	"CaseAdmin":                  UserRoleCaseAdmin,
	"VideoHearingsOfficer":       UserRoleVideoHearingsOfficer,
	"HearingFacilitationSupport": UserRoleHearingFacilitationSupport,
}

// ParseUserRole maps an upstream role name; unknown names give UserRoleNone.
func ParseUserRole(name string) UserRole {
	return userRoleNames[name]
}

func (r UserRole) String() string {
	for name, role := range userRoleNames {
		if role == r {
			return name
		}
	}
	return "None"
}
