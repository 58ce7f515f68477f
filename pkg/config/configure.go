package config

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"text/tabwriter"
)

type configureIterator struct {
	cfgValue reflect.Value
	cfgType  reflect.Type
	i        int
	tag      string
}

// IterateConfiguration returns an iterator over the fields of conf that
// carry the struct tag tag.
func IterateConfiguration(conf interface{}, tag string) *configureIterator {
	cfgValue := reflect.ValueOf(conf).Elem()
	cfgType := cfgValue.Type()

	return &configureIterator{cfgValue, cfgType, -1, tag}
}

func (it *configureIterator) Next() bool {
	it.i++
	for it.i < it.cfgValue.NumField() {
		if it.cfgType.Field(it.i).Tag.Get(it.tag) != "" {
			return true
		}
		it.i++
	}
	return false
}

func (it *configureIterator) Field() (name string, field reflect.Value) {
	return it.cfgType.Field(it.i).Tag.Get(it.tag), it.cfgValue.Field(it.i)
}

// ConfigureList writes every tagged field of conf and its value to w.
func ConfigureList(out io.Writer, conf interface{}, tag string) {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	it := IterateConfiguration(conf, tag)
	for it.Next() {
		fieldName, field := it.Field()
		fmt.Fprintf(w, "%s\t%s\n", fieldName, formatValue(field))
	}
	w.Flush()
}

// ConfigureListByName returns the name and value of the field of conf
// tagged cfgname, or an empty string if there is none.
func ConfigureListByName(conf interface{}, cfgname, tag string) string {
	if cfgname == "" {
		return ""
	}
	it := IterateConfiguration(conf, tag)
	for it.Next() {
		fieldName, field := it.Field()
		if fieldName == cfgname {
			return fmt.Sprintf("%s\t%s\n", fieldName, formatValue(field))
		}
	}
	return ""
}

func formatValue(field reflect.Value) string {
	switch field.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(field.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(field.Uint(), 10)
	case reflect.String:
		if field.Len() == 0 {
			return "<not defined>"
		}
		return field.String()
	case reflect.Slice:
		elems := make([]string, field.Len())
		for i := range elems {
			elems[i] = formatValue(field.Index(i))
		}
		return "[" + strings.Join(elems, " ") + "]"
	case reflect.Ptr:
		if field.IsNil() {
			return "<not defined>"
		}
		return formatValue(field.Elem())
	}
	return "<unsupported>"
}

// ConfigureSetSimple sets the field of conf tagged cfgname to the value
// parsed from rest. Only bool, int and string fields can be set.
func ConfigureSetSimple(rest string, cfgname string, field reflect.Value) error {
	simpleArg := func(typ reflect.Type) (reflect.Value, error) {
		switch typ.Kind() {
		case reflect.Int:
			n, err := strconv.Atoi(rest)
			if err != nil {
				return reflect.ValueOf(nil), fmt.Errorf("argument to %q must be a number", cfgname)
			}
			if n < 0 {
				return reflect.ValueOf(nil), fmt.Errorf("argument to %q must be a number greater than zero", cfgname)
			}
			return reflect.ValueOf(&n), nil
		case reflect.Bool:
			switch rest {
			case "true", "on":
				v := true
				return reflect.ValueOf(&v), nil
			case "false", "off":
				v := false
				return reflect.ValueOf(&v), nil
			}
			return reflect.ValueOf(nil), fmt.Errorf("argument to %q must be true or false", cfgname)
		case reflect.String:
			return reflect.ValueOf(&rest), nil
		default:
			return reflect.ValueOf(nil), fmt.Errorf("unsupported type for configuration key %q", cfgname)
		}
	}

	v, err := simpleArg(field.Type())
	if err != nil {
		return err
	}
	field.Set(v.Elem())
	return nil
}
