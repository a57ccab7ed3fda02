package fake

import (
	"sort"
)

// Func produces one value from the shared source.
type Func func(s *Source) any

var funcs = map[string]Func{
	"bool":          func(s *Source) any { return s.Bool() },
	"city":          func(s *Source) any { return s.City() },
	"color":         func(s *Source) any { return s.Color() },
	"company":       func(s *Source) any { return s.Company() },
	"country":       func(s *Source) any { return s.Country() },
	"domain":        func(s *Source) any { return s.DomainName() },
	"email":         func(s *Source) any { return s.Email() },
	"first_name":    func(s *Source) any { return s.FirstName() },
	"hacker_phrase": func(s *Source) any { return s.HackerPhrase() },
	"ipv4":          func(s *Source) any { return s.IPv4Address() },
	"job_title":     func(s *Source) any { return s.JobTitle() },
	"last_name":     func(s *Source) any { return s.LastName() },
	"name":          func(s *Source) any { return s.Name() },
	"paragraph":     func(s *Source) any { return s.Paragraph(1, 3, 12, " ") },
	"phone":         func(s *Source) any { return s.Phone() },
	"sentence":      func(s *Source) any { return s.Sentence(8) },
	"slug":          func(s *Source) any { return s.Slug() },
	"street":        func(s *Source) any { return s.Street() },
	"url":           func(s *Source) any { return s.URL() },
	"username":      func(s *Source) any { return s.Username() },
	"uuid":          func(s *Source) any { return s.UUIDv4() },
	"word":          func(s *Source) any { return s.Word() },
	"zip":           func(s *Source) any { return s.Zip() },
}

// Lookup returns the named value function.
func Lookup(name string) (Func, bool) {
	f, ok := funcs[name]
	return f, ok
}

// Names lists the registered function names in sorted order.
func Names() []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns a Func expanding a gofakeit template such as "{firstname}.{lastname}".
func Template(tpl string) Func {
	return func(s *Source) any {
		return s.Generate(tpl)
	}
}
