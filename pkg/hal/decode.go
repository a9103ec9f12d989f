package hal

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mitchellh/mapstructure"
)

var timeType = reflect.TypeOf(time.Time{})

// Item decodes r as a single record of type T. A collection must hold
// exactly one member.
func Item[T any](r *Resource) (T, error) {
	var out T

	state := r.state
	if r.members != nil {
		switch len(r.members) {
		case 0:
			return out, &DecodeError{Target: typeName[T](), URL: r.url, Err: errors.New("collection is empty")}
		case 1:
			state = r.members[0].state
		default:
			return out, &DecodeError{
				Target: typeName[T](),
				URL:    r.url,
				Err:    fmt.Errorf("expected one resource, got a collection of %d", len(r.members)),
			}
		}
	}

	if err := decodeState(state, &out); err != nil {
		return out, &DecodeError{Target: typeName[T](), URL: r.url, Err: err}
	}
	return out, nil
}

// Items decodes r as a collection of records of type T, in server order.
// The result is never nil.
func Items[T any](r *Resource) ([]T, error) {
	members := r.collection()
	out := make([]T, 0, len(members))
	for i, m := range members {
		var item T
		if err := decodeState(m.state, &item); err != nil {
			return nil, &DecodeError{
				Target: typeName[T](),
				URL:    r.url,
				Err:    fmt.Errorf("item %d: %w", i, err),
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func decodeState(state map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       timeHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(state)
}

// timeHook parses timestamps in whatever layout the server emits. Values
// without a zone are taken as UTC.
func timeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := dateparse.ParseIn(v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", v, err)
		}
		return t, nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case nil:
		return time.Time{}, nil
	}
	return data, nil
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}
