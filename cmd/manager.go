package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// CommandManager handles command registration, parsing, and execution
type CommandManager struct {
	mu   sync.RWMutex
	api  API
	cmds map[string]Command
}

func NewCommandManager(api API) *CommandManager {
	return &CommandManager{
		api:  api,
		cmds: make(map[string]Command),
	}
}

// Register registers a custom command
func (cm *CommandManager) Register(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}

	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}

	cm.cmds[name] = cmd
	return nil
}

// Get returns a command by name
func (cm *CommandManager) Get(name string) (Command, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	cmd, exists := cm.cmds[name]
	if !exists {
		return nil, fmt.Errorf("command not found: %s", name)
	}

	return cmd, nil
}

// List returns all registered commands sorted by name
func (cm *CommandManager) List() []Command {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	commands := make([]Command, 0, len(cm.cmds))
	for _, cmd := range cm.cmds {
		commands = append(commands, cmd)
	}

	slices.SortFunc(commands, func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return commands
}

// Execute parses and executes a command, writing its output to writer
func (cm *CommandManager) Execute(ctx context.Context, writer io.Writer, args ...string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("no command specified")
	}

	cmd, err := cm.Get(args[0])
	if err != nil {
		return 1, err
	}

	parsedArgs, err := NewParser(cmd.GetFlags()).Parse(args[1:])
	if err != nil {
		return 1, fmt.Errorf("parse error: %w", err)
	}

	return cmd.Execute(ctx, cm.api, parsedArgs, writer)
}

// Help writes the usage of every registered command
func (cm *CommandManager) Help(writer io.Writer) {
	for _, cmd := range cm.List() {
		fmt.Fprintf(writer, "  %-8s %s\n", cmd.Name(), cmd.Description())
		fmt.Fprintf(writer, "           usage: %s\n", cmd.Usage())

		flags := cmd.GetFlags()
		if flags == nil {
			continue
		}

		names := make([]string, 0, len(flags.Flags))
		for name := range flags.Flags {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			flag := flags.Flags[name]
			short := "  "
			if flag.Short != "" {
				short = "-" + flag.Short
			}
			fmt.Fprintf(writer, "           %s --%-10s %s\n", short, flag.Name, flag.Description)
		}
	}
}
