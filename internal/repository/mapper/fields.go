package mapper

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
)

// reader pulls typed values out of a stored record, falling back to zero
// values when a field is absent or has an unexpected type.
type reader struct {
	rec repository.Record
}

func (r reader) str(key string) string {
	s, _ := r.rec.Fields[key].(string)
	return s
}

func (r reader) boolean(key string) bool {
	b, _ := r.rec.Fields[key].(bool)
	return b
}

func (r reader) actor(key string) string {
	return model.Actor(r.str(key))
}

func (r reader) integer(key string) (int, bool) {
	return toInt(r.rec.Fields[key])
}

func (r reader) timestamp(key string) *time.Time {
	switch v := r.rec.Fields[key].(type) {
	case time.Time:
		t := v
		return &t
	case *time.Time:
		if v == nil {
			return nil
		}
		t := *v
		return &t
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil
		}
		return &t
	default:
		return nil
	}
}

func (r reader) audit() model.Audit {
	return model.Audit{
		CreatedByID: r.actor(repository.FieldCreatedByID),
		UpdatedByID: r.actor(repository.FieldUpdatedByID),
		CreatedAt:   copyTime(r.rec.CreatedAt),
		UpdatedAt:   copyTime(r.rec.UpdatedAt),
	}
}

func (r reader) contact() model.ContactInfo {
	return model.ContactInfo{
		Address: r.str("address"),
		Phone:   r.str("phone"),
		Email:   r.str("email"),
	}
}

// toInt accepts the numeric shapes a document can hold: native ints, floats
// from JSON decoding and json.Number when decoded with UseNumber.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
