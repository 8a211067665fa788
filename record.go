package dirverify

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Record is one directory entry: a distinguished name plus an opaque
// attribute multimap. Attribute names are case-sensitive as delivered by the
// directory. Records are immutable once returned from a search.
type Record struct {
	dn         string
	attributes map[string][]string
}

// NewRecord builds a Record from a DN and attribute multimap. Used by tests
// and fake directories; searches build records via recordFromEntry.
func NewRecord(dn string, attributes map[string][]string) Record {
	return Record{dn: dn, attributes: attributes}
}

func recordFromEntry(entry *ldap.Entry) Record {
	attrs := make(map[string][]string, len(entry.Attributes))
	for _, a := range entry.Attributes {
		attrs[a.Name] = a.Values
	}
	return Record{dn: entry.DN, attributes: attrs}
}

// DN returns the record's distinguished name, the stable key used for
// deduplication within one directory.
func (r Record) DN() string { return r.dn }

// Values returns all values of the named attribute, or nil when absent.
func (r Record) Values(name string) []string {
	if r.attributes == nil {
		return nil
	}
	return r.attributes[name]
}

// Value returns the first non-blank value of the named attribute after
// trimming whitespace, or "" when the attribute is absent or blank.
func (r Record) Value(name string) string {
	for _, v := range r.Values(name) {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
