package dirverify

import "strings"

// Inputs are the caller-supplied identifying fields for record resolution.
// All fields are optional, but at least one must be set for a plan to be
// non-empty.
type Inputs struct {
	Email       string
	UserID      string
	DisplayName string
}

// IsZero reports whether no identifying field was supplied.
func (in Inputs) IsZero() bool {
	return in.Email == "" && in.UserID == "" && in.DisplayName == ""
}

// Strategy is a single query variant against the directory: pure data,
// constructed by the planner, never mutated.
type Strategy struct {
	// Name identifies the strategy in logs and match reasons.
	Name string
	// Filter is the complete, already-escaped LDAP filter expression.
	Filter string
	// Rationale documents why the strategy exists, for operators reading
	// resolution traces.
	Rationale string
}

// Attribute families considered equivalent across directory schemas. One
// vendor populates mail, another userPrincipalName; treating the family as
// one signal is what makes resolution schema-tolerant.
var (
	emailAttributes = []string{"mail", "userPrincipalName", "email"}
	idAttributes    = []string{"sAMAccountName", "uid", "employeeID", "employeeNumber"}
	nameAttributes  = []string{"cn", "displayName", "name", "givenName", "sn"}
)

// PlanStrategies builds the ordered list of search strategies for the given
// inputs. Order encodes trust: email is the highest-trust signal and always
// comes first when present, followed by user id, then display name. A final
// combined strategy ANDs the person-class filter with an OR of every
// supplied field, catching records whose schema only populates one of
// several equivalent attributes.
//
// The plan is deterministic and side-effect free. Caller-supplied values are
// escaped before interpolation; an empty input set yields an empty plan.
func PlanStrategies(in Inputs) []Strategy {
	if in.IsZero() {
		return nil
	}

	var plan []Strategy
	var combined []string

	if in.Email != "" {
		plan = append(plan, Strategy{
			Name:      "email-exact",
			Filter:    orEquals(in.Email, "mail", "userPrincipalName"),
			Rationale: "email is the highest-trust identifier",
		})
		combined = append(combined, orEquals(in.Email, "mail", "userPrincipalName"))
	}

	if in.UserID != "" {
		plan = append(plan, Strategy{
			Name:      "userid-exact",
			Filter:    orEquals(in.UserID, "sAMAccountName", "uid", "employeeID"),
			Rationale: "account identifiers are unique per directory",
		})
		combined = append(combined, orEquals(in.UserID, "sAMAccountName", "uid", "employeeID"))
	}

	if in.DisplayName != "" {
		plan = append(plan, Strategy{
			Name:      "name-substring",
			Filter:    orContains(in.DisplayName, "cn", "displayName"),
			Rationale: "display names vary in formatting across schemas",
		})
		combined = append(combined, orContains(in.DisplayName, "cn", "displayName"))
	}

	plan = append(plan, Strategy{
		Name:      "combined-person",
		Filter:    andFilter(personClassFilter, "(|"+strings.Join(combined, "")+")"),
		Rationale: "catches records that only populate one of several equivalent attributes",
	})

	return plan
}
