package search

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ValueParser is the Value Parser (C5): converts a raw string (or a list of
// raw strings) coming off the wire into the Go value matching an
// attribute's static type.
//
// Go has no runtime enumeration of a defined type's constants the way a
// Java enum does, so the spec's "cache class→(UPPER_NAME→constant)" is
// adapted to this language's idiom: an attribute type is treated as an
// enum when it implements encoding.TextUnmarshaler, and parseEnum simply
// delegates to it after upper-casing the token. enumSupport memoizes that
// implements-check per type instead of per constant name.
type ValueParser struct {
	// Location is the server default zone used to expand date-only
	// BETWEEN bounds (spec §4.4). Defaults to time.Local.
	Location *time.Location
}

var enumSupport sync.Map // reflect.Type -> bool

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// NewValueParser returns a parser using the server's local zone.
func NewValueParser() *ValueParser {
	return &ValueParser{Location: time.Local}
}

var temporalLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
}

var nullTokens = map[string]bool{"": true, "null": true}

// Parse converts raw into a value of target's type.
func (p *ValueParser) Parse(field, raw string, target reflect.Type) (interface{}, error) {
	if nullTokens[strings.ToLower(strings.TrimSpace(raw))] {
		return reflect.Zero(target).Interface(), nil
	}

	switch target.Kind() {
	case reflect.String:
		if isEnumKind(target) {
			return p.parseEnum(field, raw, target)
		}
		return raw, nil

	case reflect.Bool:
		return p.parseBool(field, raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(stripGrouping(raw), 10, 64)
		if err != nil {
			return nil, &ParseFailure{Field: field, Value: raw, Cause: err}
		}
		return n, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(stripGrouping(raw), 10, 64)
		if err != nil {
			return nil, &ParseFailure{Field: field, Value: raw, Cause: err}
		}
		return n, nil

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(stripGrouping(raw), 64)
		if err != nil {
			return nil, &ParseFailure{Field: field, Value: raw, Cause: err}
		}
		return n, nil

	case reflect.Struct:
		if target == reflect.TypeOf(time.Time{}) {
			return p.parseTemporal(field, raw)
		}

	case reflect.Ptr:
		elemVal, err := p.Parse(field, raw, target.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(reflect.ValueOf(elemVal))
		return ptr.Interface(), nil
	}

	if isEnumKind(target) {
		return p.parseEnum(field, raw, target)
	}

	return nil, &ParseFailure{Field: field, Value: raw, Cause: fmt.Errorf("unsupported attribute type %s", target)}
}

// ParseList parses every element of raws against target's type, for IN/NOT_IN.
func (p *ValueParser) ParseList(field string, raws []string, target reflect.Type) ([]interface{}, error) {
	out := make([]interface{}, 0, len(raws))
	for _, r := range raws {
		v, err := p.Parse(field, r, target)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseRange parses a BETWEEN/NOT_BETWEEN pair. Date-only bounds are
// widened per spec §4.4: the start expands to 00:00:00.000000000 and the
// end to 23:59:59.999999999 in p.Location; offset/zoned inputs keep their
// supplied offset untouched.
func (p *ValueParser) ParseRange(field, rawLower, rawUpper string, target reflect.Type) (interface{}, interface{}, error) {
	if target == reflect.TypeOf(time.Time{}) {
		lower, lowerWasDateOnly, err := p.parseTemporalDetail(field, rawLower)
		if err != nil {
			return nil, nil, err
		}
		upper, upperWasDateOnly, err := p.parseTemporalDetail(field, rawUpper)
		if err != nil {
			return nil, nil, err
		}
		if lowerWasDateOnly {
			lower = startOfDay(lower, p.loc())
		}
		if upperWasDateOnly {
			upper = endOfDay(upper, p.loc())
		}
		return lower, upper, nil
	}

	lower, err := p.Parse(field, rawLower, target)
	if err != nil {
		return nil, nil, err
	}
	upper, err := p.Parse(field, rawUpper, target)
	if err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}

func (p *ValueParser) loc() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

func (p *ValueParser) parseBool(field, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y", "on":
		return true, nil
	case "false", "0", "no", "n", "off":
		return false, nil
	default:
		return false, &ParseFailure{Field: field, Value: raw, Cause: fmt.Errorf("not a boolean token")}
	}
}

const dateOnlyLayout = "2006-01-02"

func (p *ValueParser) parseTemporal(field, raw string) (time.Time, error) {
	t, _, err := p.parseTemporalDetail(field, raw)
	return t, err
}

// parseTemporalDetail also reports whether raw was a bare date (no time
// component), so ParseRange knows whether to widen it.
func (p *ValueParser) parseTemporalDetail(field, raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateOnlyLayout, raw, p.loc()); err == nil {
		return t, true, nil
	}
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, &ParseFailure{Field: field, Value: raw, Cause: fmt.Errorf("unrecognized temporal format")}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, loc)
}

func isEnumKind(t reflect.Type) bool {
	if cached, ok := enumSupport.Load(t); ok {
		return cached.(bool)
	}
	supported := reflect.PtrTo(t).Implements(textUnmarshalerType)
	enumSupport.Store(t, supported)
	return supported
}

func (p *ValueParser) parseEnum(field, raw string, target reflect.Type) (interface{}, error) {
	ptr := reflect.New(target)
	u := ptr.Interface().(encoding.TextUnmarshaler)
	if err := u.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(raw)))); err != nil {
		return nil, &ParseFailure{Field: field, Value: raw, Cause: err}
	}
	return ptr.Elem().Interface(), nil
}

func stripGrouping(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, "_", "")
	return raw
}
