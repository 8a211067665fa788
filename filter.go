package dirverify

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// personClassFilter matches the person object classes seen across directory
// vendors (Active Directory, OpenLDAP, generic X.500 schemas).
const personClassFilter = "(|(objectClass=user)(objectClass=person)(objectClass=inetOrgPerson))"

// orEquals builds (|(attr1=v)(attr2=v)...) with v escaped per RFC 4515.
// Caller-supplied text must never reach a filter unescaped: backslash,
// parentheses, asterisk and NUL would otherwise widen or corrupt the query.
func orEquals(value string, attributes ...string) string {
	escaped := ldap.EscapeFilter(value)
	clauses := make([]string, 0, len(attributes))
	for _, attr := range attributes {
		clauses = append(clauses, fmt.Sprintf("(%s=%s)", attr, escaped))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(|" + strings.Join(clauses, "") + ")"
}

// orContains builds (|(attr1=*v*)(attr2=*v*)...) with v escaped. The
// surrounding wildcards are ours; any asterisk inside v stays literal.
func orContains(value string, attributes ...string) string {
	escaped := ldap.EscapeFilter(value)
	clauses := make([]string, 0, len(attributes))
	for _, attr := range attributes {
		clauses = append(clauses, fmt.Sprintf("(%s=*%s*)", attr, escaped))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(|" + strings.Join(clauses, "") + ")"
}

// andFilter wraps the given sub-filters in a conjunction.
func andFilter(filters ...string) string {
	return "(&" + strings.Join(filters, "") + ")"
}

// maskSensitiveData masks identifying values before they reach log output.
func maskSensitiveData(data string) string {
	if len(data) <= 4 {
		return "***"
	}
	return data[:2] + "***" + data[len(data)-2:]
}
