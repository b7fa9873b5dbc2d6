package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/mapler/socialclock/internal/domain/event"
)

// Queryable column names of the alarm_event record.
const (
	FieldEventID     = "event_id"
	FieldUserID      = "user_id"
	FieldUserName    = "user_name"
	FieldStartAt     = "start_at"
	FieldEndAt       = "end_at"
	FieldSnoozeTimes = "snooze_times"
	FieldSyncAt      = "sync_at"
	FieldDeletedAt   = "deleted_at"
)

// Op is a comparison operator applied to a single field.
type Op string

// Supported comparison operators.
const (
	OpEq      Op = "="
	OpNe      Op = "<>"
	OpLt      Op = "<"
	OpLte     Op = "<="
	OpGt      Op = ">"
	OpGte     Op = ">="
	OpIsNull  Op = "IS NULL"
	OpNotNull Op = "IS NOT NULL"
)

// Mode selects how a filter combines its conditions.
type Mode int

const (
	// MatchAll requires every condition to hold (logical AND).
	MatchAll Mode = iota
	// MatchAny requires at least one condition to hold (logical OR).
	MatchAny
)

// Condition is one field comparison. Value is ignored for the null checks.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Filter combines conditions with the selected mode.
// The zero value matches every record.
type Filter struct {
	Mode       Mode
	Conditions []Condition
}

// Order names a field and direction for result ordering.
// The zero value leaves store order unchanged.
type Order struct {
	Field      string
	Descending bool
}

// ByStartAtDesc is the default history ordering, newest wake-up first.
var ByStartAtDesc = Order{Field: FieldStartAt, Descending: true}

// EventIDEquals is a shorthand filter matching exactly one event id.
func EventIDEquals(eventID string) Filter {
	return Filter{Conditions: []Condition{{Field: FieldEventID, Op: OpEq, Value: eventID}}}
}

// fieldKind classifies a column for value validation and comparison.
type fieldKind int

const (
	kindText fieldKind = iota
	kindTime
	kindInt
)

// queryFields maps every queryable column to its kind.
var queryFields = map[string]fieldKind{
	FieldEventID:     kindText,
	FieldUserID:      kindText,
	FieldUserName:    kindText,
	FieldStartAt:     kindTime,
	FieldEndAt:       kindTime,
	FieldSnoozeTimes: kindInt,
	FieldSyncAt:      kindTime,
	FieldDeletedAt:   kindTime,
}

// Validate checks the filter against the record schema. It fails with
// ErrQuerySyntax before any storage is touched.
func (f Filter) Validate() error {
	for _, c := range f.Conditions {
		kind, ok := queryFields[c.Field]
		if !ok {
			return fmt.Errorf("%w: unknown field %q", ErrQuerySyntax, c.Field)
		}

		switch c.Op {
		case OpIsNull, OpNotNull:
			if kind != kindTime {
				return fmt.Errorf("%w: field %q is not nullable", ErrQuerySyntax, c.Field)
			}

			continue
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
			// Value type checked below.
		default:
			return fmt.Errorf("%w: unknown operator %q", ErrQuerySyntax, c.Op)
		}

		if err := checkValueKind(c, kind); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the order field name.
func (o Order) Validate() error {
	if o.Field == "" {
		return nil
	}

	if _, ok := queryFields[o.Field]; !ok {
		return fmt.Errorf("%w: unknown order field %q", ErrQuerySyntax, o.Field)
	}

	return nil
}

// checkValueKind ensures the condition value matches the column type.
func checkValueKind(c Condition, kind fieldKind) error {
	switch kind {
	case kindText:
		if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("%w: field %q requires a string value", ErrQuerySyntax, c.Field)
		}
	case kindTime:
		if _, ok := c.Value.(time.Time); !ok {
			return fmt.Errorf("%w: field %q requires a time value", ErrQuerySyntax, c.Field)
		}
	case kindInt:
		switch c.Value.(type) {
		case int, int32, int64:
		default:
			return fmt.Errorf("%w: field %q requires an integer value", ErrQuerySyntax, c.Field)
		}
	}

	return nil
}

// Matches evaluates the filter against an event in memory.
// The filter must be validated first.
func (f Filter) Matches(e *event.AlarmEvent) bool {
	if len(f.Conditions) == 0 {
		return true
	}

	for _, c := range f.Conditions {
		ok := matchCondition(c, e)

		if f.Mode == MatchAny {
			if ok {
				return true
			}

			continue
		}

		if !ok {
			return false
		}
	}

	return f.Mode == MatchAll
}

// matchCondition evaluates a single condition against an event.
func matchCondition(c Condition, e *event.AlarmEvent) bool {
	switch queryFields[c.Field] {
	case kindText:
		return compareOrdered(textField(c.Field, e), c.Value.(string), c.Op)
	case kindInt:
		return compareOrdered(int64(e.SnoozeTimes), toInt64(c.Value), c.Op)
	case kindTime:
		actual, present := timeField(c.Field, e)

		switch c.Op {
		case OpIsNull:
			return !present
		case OpNotNull:
			return present
		}

		if !present {
			// Comparisons against an absent timestamp never match,
			// mirroring SQL NULL semantics.
			return false
		}

		return compareTime(actual, c.Value.(time.Time), c.Op)
	}

	return false
}

// textField reads a text column from the event.
func textField(field string, e *event.AlarmEvent) string {
	switch field {
	case FieldEventID:
		return e.EventID
	case FieldUserID:
		return e.UserID
	case FieldUserName:
		return e.UserName
	}

	return ""
}

// timeField reads a timestamp column from the event.
// The second result reports whether the value is present.
func timeField(field string, e *event.AlarmEvent) (time.Time, bool) {
	switch field {
	case FieldStartAt:
		return e.StartAt, true
	case FieldEndAt:
		if e.EndAt != nil {
			return *e.EndAt, true
		}
	case FieldSyncAt:
		if e.SyncAt != nil {
			return *e.SyncAt, true
		}
	case FieldDeletedAt:
		if e.DeletedAt != nil {
			return *e.DeletedAt, true
		}
	}

	return time.Time{}, false
}

// compareOrdered applies a comparison operator to two ordered values.
func compareOrdered[T string | int64](actual, expected T, op Op) bool {
	switch op {
	case OpEq:
		return actual == expected
	case OpNe:
		return actual != expected
	case OpLt:
		return actual < expected
	case OpLte:
		return actual <= expected
	case OpGt:
		return actual > expected
	case OpGte:
		return actual >= expected
	}

	return false
}

// compareTime applies a comparison operator to two timestamps.
func compareTime(actual, expected time.Time, op Op) bool {
	switch op {
	case OpEq:
		return actual.Equal(expected)
	case OpNe:
		return !actual.Equal(expected)
	case OpLt:
		return actual.Before(expected)
	case OpLte:
		return !actual.After(expected)
	case OpGt:
		return actual.After(expected)
	case OpGte:
		return !actual.Before(expected)
	}

	return false
}

// toInt64 widens supported integer values.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	}

	return 0
}

// whereClause renders the filter as a parameterized SQL fragment.
// It returns an empty clause for an empty filter.
func whereClause(f Filter) (string, []any) {
	if len(f.Conditions) == 0 {
		return "", nil
	}

	var (
		parts = make([]string, 0, len(f.Conditions))
		args  = make([]any, 0, len(f.Conditions))
	)

	for _, c := range f.Conditions {
		switch c.Op {
		case OpIsNull, OpNotNull:
			parts = append(parts, fmt.Sprintf("%s %s", c.Field, c.Op))
		default:
			args = append(args, c.Value)
			parts = append(parts, fmt.Sprintf("%s %s $%d", c.Field, c.Op, len(args)))
		}
	}

	joiner := " AND "
	if f.Mode == MatchAny {
		joiner = " OR "
	}

	return " WHERE " + strings.Join(parts, joiner), args
}

// orderClause renders the order as a SQL fragment.
func orderClause(o Order) string {
	if o.Field == "" {
		return ""
	}

	direction := "ASC"
	if o.Descending {
		direction = "DESC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", o.Field, direction)
}
