package generator

import (
	"context"
	"time"

	"db-seed/internal/fake"
	"db-seed/internal/schema"

	"github.com/shopspring/decimal"
)

const (
	maxStringLength = 100
	dateLayout      = "2006-01-02"
	dateTimeLayout  = "2006-01-02 15:04:05"
)

// valueFunc adapts a stateless draw to Generator.
type valueFunc func() any

func (fn valueFunc) Prepare(context.Context) error { return nil }

func (fn valueFunc) Generate() (any, error) { return fn(), nil }

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

func newBool(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any { return env.Source.Bool() })
}

func newString(env *Env, f *schema.Field) Generator {
	limit := maxStringLength
	if f.MaxLength > 0 && f.MaxLength < limit {
		limit = f.MaxLength
	}
	return valueFunc(func() any {
		return truncate(env.Source.Sentence(8), limit)
	})
}

func newText(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any {
		return env.Source.Paragraph(1, 3, 10, " ")
	})
}

func newDate(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any {
		now := time.Now()
		start := time.Date(now.Year()/100*100, time.January, 1, 0, 0, 0, 0, time.UTC)
		return env.Source.DateRange(start, now).Format(dateLayout)
	})
}

func newDateTime(env *Env, _ *schema.Field) Generator {
	loc := env.location()
	return valueFunc(func() any {
		now := time.Now().In(loc)
		start := time.Date(now.Year()/10*10, time.January, 1, 0, 0, 0, 0, loc)
		t := env.Source.DateRange(start, now).In(loc)
		if env.UseTZ {
			return t
		}
		return t.Format(dateTimeLayout)
	})
}

// randomAmount is a positive value with at most five integer and two
// fractional digits.
func randomAmount(src *fake.Source) decimal.Decimal {
	cents := int64(src.Intn(99999_99)) + 1
	return decimal.New(cents, -2)
}

func newDecimal(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any { return randomAmount(env.Source) })
}

func newFloat(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any { return randomAmount(env.Source).InexactFloat64() })
}

func newInteger(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any { return env.Source.Intn(101) })
}

func newEmail(env *Env, f *schema.Field) Generator {
	return valueFunc(func() any { return truncate(env.Source.Email(), f.MaxLength) })
}

func newURL(env *Env, f *schema.Field) Generator {
	return valueFunc(func() any { return truncate(env.Source.URL(), f.MaxLength) })
}

func newIP(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any { return env.Source.IPv4Address() })
}

func newSlug(env *Env, f *schema.Field) Generator {
	return valueFunc(func() any { return truncate(env.Source.Slug(), f.MaxLength) })
}

func newUUID(env *Env, _ *schema.Field) Generator {
	return valueFunc(func() any { return env.Source.UUIDv4().String() })
}

// none backs relations stored outside the entity's table.
type none struct{}

func newNone(*Env, *schema.Field) Generator { return none{} }

func (none) Prepare(context.Context) error { return nil }

func (none) Generate() (any, error) { return nil, nil }
