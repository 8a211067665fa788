package dirverify

import "strings"

// Profile is the canonical, fully-populated output shape of record
// resolution. Every field is non-empty: when no source attribute resolves,
// the field carries an explicit "not available" sentinel instead of being
// omitted.
type Profile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
	Title      string `json:"title"`
	Manager    string `json:"manager"`
	Phone      string `json:"phone"`
	Office     string `json:"office"`
}

// Sentinels used when no candidate attribute carries a value.
const (
	SentinelName       = "Name not available"
	SentinelEmail      = "Email not available"
	SentinelEmployeeID = "Employee ID not available"
	SentinelDepartment = "Department not available"
	SentinelTitle      = "Title not available"
	SentinelManager    = "Manager not available"
	SentinelPhone      = "Phone not available"
	SentinelOffice     = "Office not available"
)

// Per-field candidate attribute lists, walked in order; the first present,
// non-blank value wins. Fixed lists keep the fallback order auditable —
// no per-vendor branching, no reflection.
var (
	nameCandidates       = []string{"cn", "displayName", "name"}
	emailCandidates      = []string{"mail", "userPrincipalName", "email"}
	employeeIDCandidates = []string{"employeeID", "employeeNumber", "sAMAccountName", "uid"}
	departmentCandidates = []string{"department", "departmentNumber", "ou"}
	titleCandidates      = []string{"title", "personalTitle"}
	managerCandidates    = []string{"manager"}
	phoneCandidates      = []string{"telephoneNumber", "mobile"}
	officeCandidates     = []string{"physicalDeliveryOfficeName", "office", "roomNumber", "l"}
)

// profileAttributes is the attribute selection list requested on every
// resolution search: the union of all candidate lists plus the scoring
// families.
var profileAttributes = []string{
	"cn", "displayName", "name", "givenName", "sn",
	"mail", "userPrincipalName", "email",
	"employeeID", "employeeNumber", "sAMAccountName", "uid",
	"department", "departmentNumber", "ou",
	"title", "personalTitle",
	"manager",
	"telephoneNumber", "mobile",
	"physicalDeliveryOfficeName", "office", "roomNumber", "l",
}

// Fallbacks carries caller-supplied values used when a record lacks every
// source attribute for a field. Only name and email have meaningful caller
// fallbacks.
type Fallbacks struct {
	Email       string
	DisplayName string
}

// NormalizeProfile extracts the canonical fields from a raw record. The walk
// is pure: the same record and fallbacks always yield byte-identical output.
func NormalizeProfile(rec Record, fb Fallbacks) Profile {
	return Profile{
		Name:       resolveName(rec, fb.DisplayName),
		Email:      resolveField(rec, emailCandidates, fb.Email, SentinelEmail),
		EmployeeID: resolveField(rec, employeeIDCandidates, "", SentinelEmployeeID),
		Department: resolveField(rec, departmentCandidates, "", SentinelDepartment),
		Title:      resolveField(rec, titleCandidates, "", SentinelTitle),
		Manager:    resolveField(rec, managerCandidates, "", SentinelManager),
		Phone:      resolveField(rec, phoneCandidates, "", SentinelPhone),
		Office:     resolveField(rec, officeCandidates, "", SentinelOffice),
	}
}

// resolveName adds one candidate the generic walk cannot express: a name
// composed from givenName and sn, tried after the single-attribute
// candidates and before the caller fallback.
func resolveName(rec Record, fallback string) string {
	for _, attr := range nameCandidates {
		if v := rec.Value(attr); v != "" {
			return v
		}
	}
	given, sur := rec.Value("givenName"), rec.Value("sn")
	if given != "" && sur != "" {
		return given + " " + sur
	}
	if v := strings.TrimSpace(fallback); v != "" {
		return v
	}
	return SentinelName
}

func resolveField(rec Record, candidates []string, fallback, sentinel string) string {
	for _, attr := range candidates {
		if v := rec.Value(attr); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(fallback); v != "" {
		return v
	}
	return sentinel
}
