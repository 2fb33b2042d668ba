package weave

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/reactive"
)

// normalize flattens declared children into nodes. Nil values are dropped,
// primitives become text, reactive values become reactive nodes and dom
// handles become element nodes.
func normalize(children []any) ([]*Node, error) {
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		var err error
		out, err = appendChild(out, c)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendChild(out []*Node, c any) ([]*Node, error) {
	switch v := c.(type) {
	case nil:
		return out, nil
	case *Node:
		if v == nil {
			return out, nil
		}
		return append(out, v), nil
	case []*Node:
		for _, n := range v {
			if n != nil {
				out = append(out, n)
			}
		}
		return out, nil
	case []any:
		var err error
		for _, item := range v {
			if out, err = appendChild(out, item); err != nil {
				return nil, err
			}
		}
		return out, nil
	case string:
		return append(out, Text(v)), nil
	case reactive.Readable, func() any:
		return append(out, Reactive(v)), nil
	case fmt.Stringer:
		return append(out, Text(v.String())), nil
	case *dom.Node:
		if v == nil {
			return out, nil
		}
		n, err := New(v, nil)
		if err != nil {
			return nil, err
		}
		return append(out, n), nil
	case error:
		return nil, errors.New(errors.CodeUnknownNodeType).WithDetail("error value in children").Wrap(v)
	}

	rv := reflect.ValueOf(c)
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return append(out, Text(fmt.Sprint(c))), nil
	case reflect.Slice, reflect.Array:
		var err error
		for i := 0; i < rv.Len(); i++ {
			if out, err = appendChild(out, rv.Index(i).Interface()); err != nil {
				return nil, err
			}
		}
		return out, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return out, nil
		}
	}
	return nil, errors.New(errors.CodeUnknownNodeType).WithDetailf("cannot render %T", c)
}
