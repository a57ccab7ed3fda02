package schema

import "strings"

var abbreviations = map[string]string{
	"nm": "name", "dt": "date", "no": "number", "cd": "code",
	"desc": "description", "amt": "amount", "cnt": "count", "qty": "quantity",
	"addr": "address", "tel": "phone", "ph": "phone",
	"pwd": "password", "passwd": "password", "pw": "password",
	"img": "image", "uri": "url", "href": "url", "link": "url", "site": "url", "website": "url",
	"homepage": "url", "ip": "ip", "ipaddr": "ip", "ipv4": "ip", "ip4": "ip",
	"mail": "email", "msg": "message", "txt": "text", "tit": "title",
	"usr": "user", "emp": "employee", "dept": "department", "grp": "group", "cat": "category",
	"guid": "uuid", "uuid": "uuid",
	"reg": "registered", "mod": "modified", "del": "deleted", "cre": "created",
	"upd": "updated", "yn": "yesno", "stat": "status", "sts": "status",
	"seq": "sequence", "idx": "index", "permalink": "slug",
}

// AnalyzeMeaning guesses what a column holds from its comment, or failing that
// from its name with common abbreviations expanded ("usr_addr" -> "user address").
func AnalyzeMeaning(colName, comment string) string {
	c := strings.ToLower(comment)
	n := strings.ToLower(colName)

	switch {
	case strings.Contains(c, "email") || strings.Contains(c, "e-mail"):
		return "email"
	case strings.Contains(c, "url") || strings.Contains(c, "website") || strings.Contains(c, "link"):
		return "url"
	case strings.Contains(c, "slug"):
		return "slug"
	case strings.Contains(c, "uuid") || strings.Contains(c, "guid"):
		return "uuid"
	case strings.Contains(c, "ip address"):
		return "ip"
	}

	parts := strings.FieldsFunc(n, func(r rune) bool { return r == '_' || r == '-' })
	decoded := make([]string, 0, len(parts))
	for _, part := range parts {
		if full, ok := abbreviations[part]; ok {
			decoded = append(decoded, full)
		} else {
			decoded = append(decoded, part)
		}
	}
	return strings.Join(decoded, " ")
}

// KindFromMeaning returns the specialised text kind a meaning points at, or
// KindUnknown when plain text generation is the best fit.
func KindFromMeaning(meaning string) Kind {
	words := strings.Fields(meaning)
	has := func(w string) bool {
		for _, x := range words {
			if x == w {
				return true
			}
		}
		return false
	}

	switch {
	case has("email"):
		return KindEmail
	case has("url"):
		return KindURL
	case has("slug"):
		return KindSlug
	case has("uuid"):
		return KindUUID
	case has("ip"):
		return KindIP
	}
	return KindUnknown
}
