package schema

import (
	"strings"
	"unicode"
)

// Kind is the semantic type of a field. It selects the generator strategy.
type Kind int

const (
	KindUnknown Kind = iota
	KindBool
	KindString
	KindText
	KindDate
	KindDateTime
	KindDecimal
	KindFloat
	KindInteger
	KindEmail
	KindURL
	KindUUID
	KindIP
	KindSlug
	KindRef
	KindManyToMany
)

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindBool:       "boolean",
	KindString:     "string",
	KindText:       "text",
	KindDate:       "date",
	KindDateTime:   "datetime",
	KindDecimal:    "decimal",
	KindFloat:      "float",
	KindInteger:    "integer",
	KindEmail:      "email",
	KindURL:        "url",
	KindUUID:       "uuid",
	KindIP:         "ip",
	KindSlug:       "slug",
	KindRef:        "ref",
	KindManyToMany: "many_to_many",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsReference reports whether the kind points at another entity.
func (k Kind) IsReference() bool {
	return k == KindRef || k == KindManyToMany
}

var kindAliases = map[string]Kind{
	"bool": KindBool, "boolean": KindBool, "null_boolean": KindBool,
	"string": KindString, "char": KindString, "varchar": KindString,
	"text":     KindText,
	"date":     KindDate,
	"datetime": KindDateTime, "date_time": KindDateTime, "timestamp": KindDateTime,
	"decimal": KindDecimal, "numeric": KindDecimal,
	"float": KindFloat, "double": KindFloat,
	"int": KindInteger, "integer": KindInteger, "smallint": KindInteger,
	"small_integer": KindInteger, "positive_integer": KindInteger, "bigint": KindInteger,
	"big_integer": KindInteger, "auto": KindInteger, "big_auto": KindInteger,
	"positive_small_integer": KindInteger, "positive_big_integer": KindInteger, "small_auto": KindInteger,
	"email": KindEmail,
	"url":   KindURL,
	"uuid":  KindUUID,
	"ip":    KindIP, "ip_address": KindIP, "generic_ip_address": KindIP,
	"slug": KindSlug,
	"ref":  KindRef, "foreign_key": KindRef, "fk": KindRef, "one_to_one": KindRef,
	"many_to_many": KindManyToMany, "m2m": KindManyToMany,
}

// ParseKind maps a kind name to its tag. Names are matched case-insensitively and
// "ForeignKey" style spellings are accepted. The second result is false for unknown names.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindAliases[normalizeKindName(name)]
	return k, ok
}

// impliesUnique reports whether a kind spelling carries a uniqueness constraint.
func impliesUnique(name string) bool {
	return normalizeKindName(name) == "one_to_one"
}

func normalizeKindName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "Field")
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == ' ':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
