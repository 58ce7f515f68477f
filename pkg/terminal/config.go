package terminal

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-delve/uleb128/pkg/config"
	"github.com/go-delve/uleb128/pkg/leb128"
)

const cfgTag = "cfgName"

func configureCmd(t *Term, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("wrong number of arguments to \"config\"")
	}
	switch args[0] {
	case "-list":
		config.ConfigureList(t.stdout, t.conf, cfgTag)
		return nil
	case "-save":
		return config.SaveConfig(t.conf)
	case "alias":
		return configureSetAlias(t, args[1:])
	}
	if len(args) == 1 {
		out := config.ConfigureListByName(t.conf, args[0], cfgTag)
		if out == "" {
			return fmt.Errorf("%q is not a configuration parameter", args[0])
		}
		fmt.Fprint(t.stdout, out)
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("wrong number of arguments to \"config %s\"", args[0])
	}
	if err := configureSet(t, args[0], args[1]); err != nil {
		return err
	}
	t.applyConfig()
	return nil
}

func configureFindFieldByName(conf *config.Config, name string) reflect.Value {
	it := config.IterateConfiguration(conf, cfgTag)
	for it.Next() {
		fieldName, field := it.Field()
		if fieldName == name {
			return field
		}
	}
	return reflect.ValueOf(nil)
}

func configureSet(t *Term, cfgname, rest string) error {
	field := configureFindFieldByName(t.conf, cfgname)
	if !field.CanAddr() {
		return fmt.Errorf("%q is not a configuration parameter", cfgname)
	}
	old := reflect.ValueOf(field.Interface())
	if err := config.ConfigureSetSimple(rest, cfgname, field); err != nil {
		return err
	}
	if err := validateConfig(t.conf); err != nil {
		field.Set(old)
		return err
	}
	t.log.Debugf("config %s set to %q", cfgname, rest)
	return nil
}

func validateConfig(conf *config.Config) error {
	if conf.Width != "" {
		if _, err := leb128.ParseWidth(conf.Width); err != nil {
			return err
		}
	}
	switch conf.OutputFormat {
	case "", config.FormatHex, config.FormatGo, config.FormatRaw:
	default:
		return fmt.Errorf("invalid output format %q", conf.OutputFormat)
	}
	return nil
}

func configureSetAlias(t *Term, args []string) error {
	switch len(args) {
	case 1: // delete alias rule
		for k, v := range t.conf.Aliases {
			kept := v[:0]
			for _, alias := range v {
				if alias != args[0] {
					kept = append(kept, alias)
				}
			}
			t.conf.Aliases[k] = kept
		}
	case 2: // add alias rule
		alias, cmd := args[1], args[0]
		if t.conf.Aliases == nil {
			t.conf.Aliases = make(map[string][]string)
		}
		t.conf.Aliases[cmd] = append(t.conf.Aliases[cmd], alias)
	default:
		return errors.New("wrong number of arguments to config alias")
	}
	t.cmds.Merge(t.conf.Aliases)
	return nil
}
