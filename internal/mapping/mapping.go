// Package mapping holds the FlexibleCommand → JSON command type table used by
// the converter, plus optional YAML overlays for commands the built-in table
// does not know about.
package mapping

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Command describes the JSON equivalent of one FlexibleCommand constructor.
// Fields lists the JSON field names the command would carry after a full
// argument translation; the converter emits empty payloads and leaves field
// population to manual follow-up, so Fields is informational only.
type Command struct {
	Type   string   `yaml:"type"`
	Fields []string `yaml:"fields"`
}

// builtin maps FlexibleCommandFactory::createX names to their JSON command
// types. Mirrors the command set of the ArduinoASTInterpreter runtime.
var builtin = map[string]Command{
	"LoopStart":            {Type: "LOOP_START", Fields: []string{"name", "iteration"}},
	"LoopEnd":              {Type: "LOOP_END", Fields: []string{"iterations"}},
	"LoopEndComplete":      {Type: "LOOP_END", Fields: []string{"iterations", "completed"}},
	"FunctionCallLoop":     {Type: "FUNCTION_CALL", Fields: []string{"iteration", "completed"}},
	"SetupEnd":             {Type: "SETUP_END", Fields: []string{"message"}},
	"IfStatement":          {Type: "IF_STATEMENT", Fields: []string{"condition", "branch"}},
	"WhileLoopStart":       {Type: "WHILE_LOOP", Fields: []string{"phase"}},
	"WhileLoopIteration":   {Type: "WHILE_LOOP", Fields: []string{"iteration"}},
	"WhileLoopEnd":         {Type: "WHILE_LOOP", Fields: []string{"iteration"}},
	"ForLoopStart":         {Type: "FOR_LOOP", Fields: []string{"phase"}},
	"ForLoopIteration":     {Type: "FOR_LOOP", Fields: []string{"iteration"}},
	"ForLoopEnd":           {Type: "FOR_LOOP", Fields: []string{"iteration", "maxIterations"}},
	"DoWhileLoopStart":     {Type: "DO_WHILE_LOOP", Fields: []string{"phase"}},
	"DoWhileLoopIteration": {Type: "DO_WHILE_LOOP", Fields: []string{"iteration"}},
	"DoWhileLoopEnd":       {Type: "DO_WHILE_LOOP", Fields: []string{"iteration"}},
	"BreakStatement":       {Type: "BREAK_STATEMENT", Fields: []string{}},
	"ContinueStatement":    {Type: "CONTINUE_STATEMENT", Fields: []string{}},
	"SwitchStatement":      {Type: "SWITCH_STATEMENT", Fields: []string{"discriminant"}},
	"SwitchCase":           {Type: "SWITCH_CASE", Fields: []string{"value", "shouldExecute"}},
	"ToneWithDuration":     {Type: "TONE", Fields: []string{"pin", "frequency", "duration"}},
	"Tone":                 {Type: "TONE", Fields: []string{"pin", "frequency"}},
	"NoTone":               {Type: "NO_TONE", Fields: []string{"pin"}},
	"PinMode":              {Type: "PIN_MODE", Fields: []string{"pin", "mode"}},
	"AnalogWrite":          {Type: "ANALOG_WRITE", Fields: []string{"pin", "value"}},
	"Delay":                {Type: "DELAY", Fields: []string{"milliseconds"}},
	"DelayMicroseconds":    {Type: "DELAY_MICROSECONDS", Fields: []string{"microseconds"}},
	"SerialBegin":          {Type: "SERIAL_BEGIN", Fields: []string{"baudRate"}},
	"SerialPrintln":        {Type: "SERIAL_PRINTLN", Fields: []string{"message", "format"}},
	"SerialWrite":          {Type: "SERIAL_WRITE", Fields: []string{"data"}},
	"SerialFlush":          {Type: "SERIAL_FLUSH", Fields: []string{}},
	"SerialTimeout":        {Type: "SERIAL_TIMEOUT", Fields: []string{"timeout"}},
}

// Table is an immutable command lookup, built once at startup.
type Table struct {
	commands map[string]Command
}

// Builtin returns a Table containing only the built-in command set.
func Builtin() *Table {
	return &Table{commands: builtin}
}

// Lookup returns the JSON equivalent for a FlexibleCommand name.
func (t *Table) Lookup(name string) (Command, bool) {
	c, ok := t.commands[name]
	return c, ok
}

// Len returns the number of known commands.
func (t *Table) Len() int {
	return len(t.commands)
}

// Names returns all known command names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// overlayFile is the on-disk overlay format:
//
//	commands:
//	  DigitalWrite:
//	    type: DIGITAL_WRITE
//	    fields: [pin, value]
type overlayFile struct {
	Commands map[string]Command `yaml:"commands"`
}

// LoadOverlay reads a YAML overlay and merges it over the built-in table.
// Overlay entries override built-in ones with the same name.
func LoadOverlay(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mappings %s: %w", path, err)
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("parsing mappings %s: %w", path, err)
	}

	merged := make(map[string]Command, len(builtin)+len(overlay.Commands))
	for name, c := range builtin {
		merged[name] = c
	}
	for name, c := range overlay.Commands {
		if c.Type == "" {
			return nil, fmt.Errorf("mappings %s: command %q has empty type", path, name)
		}
		merged[name] = c
	}

	return &Table{commands: merged}, nil
}
