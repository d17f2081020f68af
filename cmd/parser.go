package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses user-defined arguments into flags
type Parser struct {
	flagSet *CommandFlagSet
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = &CommandFlagSet{Flags: make(map[string]*CommandFlag)}
	}

	return &Parser{
		flagSet: flagSet,
	}
}

func (cp *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Flags: make(map[string]any),
		Raw:   raw,
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[flagName] = flag.Default
		}
	}

	longToName := make(map[string]string)
	shortToName := make(map[string]string)
	for flagName, flag := range cp.flagSet.Flags {
		longToName[flag.Name] = flagName
		if flag.Short != "" {
			shortToName[flag.Short] = flagName
		}
	}

	// Defaults of Multiple flags are replaced, not extended.
	seen := make(map[string]bool)

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			args.Args = append(args.Args, raw[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "--") {
			key, value, hasValue := parseLongFlag(arg)
			flagName, exists := longToName[key]
			if !exists {
				return nil, fmt.Errorf("unknown flag: --%s", key)
			}

			flag := cp.flagSet.Flags[flagName]
			switch {
			case flag.Type == FlagBool:
				args.Flags[flagName] = true
				continue
			case hasValue:
			case i+1 < len(raw) && !isFlag(raw[i+1]):
				value = raw[i+1]
				i++
			default:
				return nil, fmt.Errorf("flag %s requires a value", key)
			}

			if err := cp.set(args, seen, flagName, value); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNumber(arg) {
			shortFlags := arg[1:]

			for j, shortChar := range shortFlags {
				shortStr := string(shortChar)
				flagName, exists := shortToName[shortStr]
				if !exists {
					return nil, fmt.Errorf("unknown flag: -%s", shortStr)
				}

				flag := cp.flagSet.Flags[flagName]
				if flag.Type == FlagBool {
					args.Flags[flagName] = true
					continue
				}

				var value string
				if j+1 < len(shortFlags) {
					value = shortFlags[j+1:]
				} else if i+1 < len(raw) && !isFlag(raw[i+1]) {
					value = raw[i+1]
					i++
				} else {
					return nil, fmt.Errorf("flag -%s requires a value", shortStr)
				}

				if err := cp.set(args, seen, flagName, value); err != nil {
					return nil, err
				}
				break
			}
			continue
		}

		args.Args = append(args.Args, arg)
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Required {
			if _, ok := args.Flags[flagName]; !ok {
				if flag.Short != "" {
					return nil, fmt.Errorf("required flag: -%s / --%s", flag.Short, flag.Name)
				}
				return nil, fmt.Errorf("required flag: --%s", flag.Name)
			}
		}
	}

	return args, nil
}

func (cp *Parser) set(args *CommandArgs, seen map[string]bool, flagName, value string) error {
	flag := cp.flagSet.Flags[flagName]

	v, err := coerce(value, flag.Type)
	if err != nil {
		return fmt.Errorf("flag --%s: %w", flag.Name, err)
	}

	if !flag.Multiple {
		args.Flags[flagName] = v
		return nil
	}

	first := !seen[flagName]
	seen[flagName] = true

	switch typed := v.(type) {
	case int64:
		values, _ := args.Flags[flagName].([]int64)
		if first {
			values = nil
		}
		args.Flags[flagName] = append(values, typed)
	case string:
		values, _ := args.Flags[flagName].([]string)
		if first {
			values = nil
		}
		args.Flags[flagName] = append(values, typed)
	}
	return nil
}

func parseLongFlag(arg string) (key, value string, hasValue bool) {
	arg = strings.TrimPrefix(arg, "--")
	if idx := strings.Index(arg, "="); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

// isFlag reports whether arg starts a new flag. Negative numbers are values.
func isFlag(arg string) bool {
	return strings.HasPrefix(arg, "-") && arg != "-" && !isNumber(arg)
}

func isNumber(arg string) bool {
	_, err := strconv.ParseInt(arg, 10, 64)
	return err == nil
}

func coerce(value string, typeStr string) (any, error) {
	switch typeStr {
	case FlagInt:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer '%s'", value)
		}
		return v, nil
	case FlagBool:
		return value == "true" || value == "1" || value == "yes", nil
	default:
		return value, nil
	}
}
