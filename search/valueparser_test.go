package search

import (
	"reflect"
	"testing"
	"time"
)

func TestParseIntAndFloat(t *testing.T) {
	p := NewValueParser()

	v, err := p.Parse("age", "1,234", reflect.TypeOf(int64(0)))
	if err != nil {
		t.Fatal(err)
	}
	if v.(int64) != 1234 {
		t.Fatalf("expected grouping stripped, got %v", v)
	}

	v2, err := p.Parse("score", "3.14", reflect.TypeOf(float64(0)))
	if err != nil {
		t.Fatal(err)
	}
	if v2.(float64) != 3.14 {
		t.Fatalf("got %v", v2)
	}
}

func TestParseBoolTokens(t *testing.T) {
	p := NewValueParser()
	for _, tok := range []string{"true", "1", "yes", "on"} {
		v, err := p.Parse("active", tok, reflect.TypeOf(false))
		if err != nil || v.(bool) != true {
			t.Fatalf("token %q: got %v, %v", tok, v, err)
		}
	}
	if _, err := p.Parse("active", "maybe", reflect.TypeOf(false)); err == nil {
		t.Fatal("expected parse failure for invalid bool token")
	}
}

func TestParseNullTokenReturnsZeroValue(t *testing.T) {
	p := NewValueParser()
	v, err := p.Parse("name", "", reflect.TypeOf(""))
	if err != nil {
		t.Fatal(err)
	}
	if v.(string) != "" {
		t.Fatalf("got %v", v)
	}
}

func TestParseTemporalISO8601(t *testing.T) {
	p := NewValueParser()
	v, err := p.Parse("createdAt", "2026-07-30T10:00:00Z", reflect.TypeOf(time.Time{}))
	if err != nil {
		t.Fatal(err)
	}
	tm := v.(time.Time)
	if tm.Year() != 2026 || tm.Month() != 7 || tm.Day() != 30 {
		t.Fatalf("got %v", tm)
	}
}

func TestParseRangeDateOnlyExpandsToStartAndEndOfDay(t *testing.T) {
	p := &ValueParser{Location: time.UTC}
	lowerRaw, upperRaw := "2026-07-01", "2026-07-31"

	lower, upper, err := p.ParseRange("createdAt", lowerRaw, upperRaw, reflect.TypeOf(time.Time{}))
	if err != nil {
		t.Fatal(err)
	}
	lt := lower.(time.Time)
	ut := upper.(time.Time)

	if lt.Hour() != 0 || lt.Minute() != 0 || lt.Second() != 0 {
		t.Fatalf("expected start of day, got %v", lt)
	}
	if ut.Hour() != 23 || ut.Minute() != 59 || ut.Second() != 59 {
		t.Fatalf("expected end of day, got %v", ut)
	}
}

func TestParseRangeZonedTimestampIsNotWidened(t *testing.T) {
	p := &ValueParser{Location: time.UTC}
	lower, upper, err := p.ParseRange("createdAt", "2026-07-01T08:30:00Z", "2026-07-31T09:00:00Z", reflect.TypeOf(time.Time{}))
	if err != nil {
		t.Fatal(err)
	}
	if lower.(time.Time).Hour() != 8 {
		t.Fatalf("expected hour preserved, got %v", lower)
	}
	if upper.(time.Time).Hour() != 9 {
		t.Fatalf("expected hour preserved, got %v", upper)
	}
}

type status string

func (s *status) UnmarshalText(b []byte) error {
	*s = status(b)
	return nil
}

func TestParseEnumViaTextUnmarshaler(t *testing.T) {
	p := NewValueParser()
	v, err := p.Parse("status", "active", reflect.TypeOf(status("")))
	if err != nil {
		t.Fatal(err)
	}
	if v.(status) != "ACTIVE" {
		t.Fatalf("expected upper-cased enum token, got %v", v)
	}
}

func TestParseListParsesEachElement(t *testing.T) {
	p := NewValueParser()
	vals, err := p.ParseList("age", []string{"1", "2", "3"}, reflect.TypeOf(int64(0)))
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 3 || vals[1].(int64) != 2 {
		t.Fatalf("got %v", vals)
	}
}
