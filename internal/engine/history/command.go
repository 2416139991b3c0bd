package history

import (
	"fmt"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

// Command represents a reversible step that can be executed and unexecuted.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute() error

	// Unexecute reverses the command and returns an error if it fails.
	Unexecute() error

	// Description returns a human-readable description of the command.
	Description() string
}

// CalculatorCommand applies one operator and operand to an accumulator.
type CalculatorCommand struct {
	Operator accumulator.Operator
	Operand  int64

	target *accumulator.Accumulator
}

// NewCalculatorCommand creates a command bound to acc.
func NewCalculatorCommand(acc *accumulator.Accumulator, op accumulator.Operator, operand int64) *CalculatorCommand {
	return &CalculatorCommand{
		Operator: op,
		Operand:  operand,
		target:   acc,
	}
}

// Execute applies the operator and operand.
func (c *CalculatorCommand) Execute() error {
	return c.target.Apply(c.Operator, c.Operand)
}

// Unexecute applies the inverse operator with the same operand.
func (c *CalculatorCommand) Unexecute() error {
	inv, err := Inverse(c.Operator)
	if err != nil {
		return err
	}
	return c.target.Apply(inv, c.Operand)
}

// Description returns the step in "<op> <operand>" form.
func (c *CalculatorCommand) Description() string {
	return fmt.Sprintf("%s %d", c.Operator, c.Operand)
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute() error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(); err != nil {
			// Roll back the steps that already ran
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Unexecute()
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Unexecute reverses all commands in reverse order.
func (c *CompoundCommand) Unexecute() error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Unexecute(); err != nil {
			// Re-apply what was already reversed so the group stays whole
			for j := i + 1; j < len(c.Commands); j++ {
				_ = c.Commands[j].Execute()
			}
			return fmt.Errorf("unexecute compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
