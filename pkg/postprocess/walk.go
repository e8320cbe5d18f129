package postprocess

import (
	"reflect"

	"github.com/xhad/compligen/internal/models"
)

// leafFunc rewrites one string leaf. Returning keep=false removes the leaf
// from its list, nils a *string, and empties a plain string field.
type leafFunc func(s string) (out string, keep bool)

var headerType = reflect.TypeOf(models.Header{})

// walk applies fn to every string leaf reachable from v, which must be
// addressable. A Header embedded in a document is skipped, as are the leaves
// in skip. Header values come from the caller and are scrubbed separately.
func walk(v reflect.Value, skip map[*string]bool, fn leafFunc) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		if v.Elem().Kind() != reflect.String {
			walk(v.Elem(), skip, fn)
			return
		}
		out, keep := fn(v.Elem().String())
		if !keep {
			v.Set(reflect.Zero(v.Type()))
			return
		}
		v.Elem().SetString(out)

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || (f.Anonymous && f.Type == headerType) {
				continue
			}
			walk(v.Field(i), skip, fn)
		}

	case reflect.String:
		if v.CanAddr() && skip[v.Addr().Interface().(*string)] {
			return
		}
		out, keep := fn(v.String())
		if !keep {
			out = ""
		}
		v.SetString(out)

	case reflect.Slice:
		if v.IsNil() {
			return
		}
		if v.Type().Elem().Kind() != reflect.String {
			for i := 0; i < v.Len(); i++ {
				walk(v.Index(i), skip, fn)
			}
			return
		}
		kept := reflect.MakeSlice(v.Type(), 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			out, keep := fn(v.Index(i).String())
			if keep {
				kept = reflect.Append(kept, reflect.ValueOf(out).Convert(v.Type().Elem()))
			}
		}
		v.Set(kept)
	}
}

// leaves returns every string leaf under the pointer v, in field order. For a
// document the embedded header is excluded; pass the header itself to get its
// leaves.
func leaves(v any) []string {
	var out []string
	walk(reflect.ValueOf(v).Elem(), nil, func(s string) (string, bool) {
		out = append(out, s)
		return s, true
	})
	return out
}
