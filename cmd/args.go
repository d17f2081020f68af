package cmd

import "strconv"

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags, keyed by flag set name
	Flags map[string]any

	// Raw unparsed arguments
	Raw []string
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// Flag types understood by the parser.
const (
	FlagString = "string"
	FlagBool   = "bool"
	FlagInt    = "int"
)

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "desc"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "d")
	Type        string `json:"type"`              // FlagString, FlagBool or FlagInt
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
	Multiple    bool   `json:"multiple"`          // Collects every occurrence into a slice
}

func (a *CommandArgs) String(name string) string {
	v, _ := a.Flags[name].(string)
	return v
}

func (a *CommandArgs) Bool(name string) bool {
	v, _ := a.Flags[name].(bool)
	return v
}

// Int returns the flag value and whether it was set.
func (a *CommandArgs) Int(name string) (int64, bool) {
	v, ok := a.Flags[name].(int64)
	return v, ok
}

// Ints returns all values of a Multiple int flag.
func (a *CommandArgs) Ints(name string) []int64 {
	v, _ := a.Flags[name].([]int64)
	return v
}

// Strings returns all values of a Multiple string flag.
func (a *CommandArgs) Strings(name string) []string {
	v, _ := a.Flags[name].([]string)
	return v
}

// ArgInt parses the positional argument at i as an id.
func (a *CommandArgs) ArgInt(i int) (int64, error) {
	if i >= len(a.Args) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(a.Args[i], 10, 64)
}
