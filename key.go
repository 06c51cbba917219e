package gopick

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/a-peyrard/gopick/option"
)

type (
	// Key identifies what is requested from an injector: a type, optionally qualified by a name.
	//
	// The type is only used as an identity token, it is never introspected.
	Key struct {
		typ  reflect.Type
		name string
	}

	KeyOptions struct {
		name string
	}
)

// Named qualifies a key, so several bindings for the same type can coexist.
func Named(name string) option.Option[KeyOptions] {
	return func(opts *KeyOptions) {
		opts.name = name
	}
}

// KeyOf returns the key of type T.
func KeyOf[T any](opts ...option.Option[KeyOptions]) Key {
	options := option.Build(&KeyOptions{}, opts...)
	return Key{
		typ:  TypeOf[T](),
		name: options.name,
	}
}

// TypeOf returns the reflect.Type of T, interfaces included.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (k Key) Type() reflect.Type {
	return k.typ
}

func (k Key) Name() string {
	return k.name
}

func (k Key) IsQualified() bool {
	return k.name != ""
}

func (k Key) IsZero() bool {
	return k.typ == nil
}

func (k Key) String() string {
	if k.typ == nil {
		return "<nil>"
	}
	if k.name != "" {
		return fmt.Sprintf("%s@%s", qualifiedName(k.typ), k.name)
	}
	return qualifiedName(k.typ)
}

// qualifiedName renders a type with the full package path of every named type it refers to:
// *github.com/acme/app.Bar, map[string]github.com/acme/app.Bar. Two distinct types never share a
// rendering.
func qualifiedName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), qualifiedName(t.Elem()))
	case reflect.Map:
		return "map[" + qualifiedName(t.Key()) + "]" + qualifiedName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + qualifiedName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + qualifiedName(t.Elem())
		default:
			return "chan " + qualifiedName(t.Elem())
		}
	case reflect.Func:
		return "func" + signature(t)
	case reflect.Struct:
		if t.NumField() == 0 {
			return "struct {}"
		}
		fields := make([]string, t.NumField())
		for i := range fields {
			f := t.Field(i)
			field := memberName(f.PkgPath, f.Name) + " " + qualifiedName(f.Type)
			if f.Anonymous {
				field = "embedded " + field
			}
			if f.Tag != "" {
				field += " " + strconv.Quote(string(f.Tag))
			}
			fields[i] = field
		}
		return "struct { " + strings.Join(fields, "; ") + " }"
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "interface {}"
		}
		methods := make([]string, t.NumMethod())
		for i := range methods {
			m := t.Method(i)
			methods[i] = memberName(m.PkgPath, m.Name) + signature(m.Type)
		}
		return "interface { " + strings.Join(methods, "; ") + " }"
	default:
		return t.String()
	}
}

// signature renders the parameters and results of a func type.
func signature(t reflect.Type) string {
	in := make([]string, t.NumIn())
	for i := range in {
		if t.IsVariadic() && i == len(in)-1 {
			in[i] = "..." + qualifiedName(t.In(i).Elem())
			continue
		}
		in[i] = qualifiedName(t.In(i))
	}
	out := make([]string, t.NumOut())
	for i := range out {
		out[i] = qualifiedName(t.Out(i))
	}

	sig := "(" + strings.Join(in, ", ") + ")"
	switch len(out) {
	case 0:
		return sig
	case 1:
		return sig + " " + out[0]
	default:
		return sig + " (" + strings.Join(out, ", ") + ")"
	}
}

// memberName qualifies unexported names, which belong to their package.
func memberName(pkgPath, name string) string {
	if pkgPath == "" {
		return name
	}
	return pkgPath + "." + name
}
