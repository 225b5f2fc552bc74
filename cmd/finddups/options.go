package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// OptionType defines the type of value an option expects
type OptionType int

const (
	OptionTypeBool OptionType = iota
	OptionTypeString
	OptionTypeInt
)

// OptionDef defines a command-line option
type OptionDef struct {
	Long        string     // Long option name (without --)
	Short       string     // Short option name (without -)
	Type        OptionType // Type of value expected
	Description string     // Help description
	Default     string     // Default value
}

// ParsedOptions holds the parsed command-line options
type ParsedOptions struct {
	values        map[string]string
	args          []string
	defs          map[string]*OptionDef
	order         []string          // Long names in definition order, for usage output
	shortMap      map[string]string // Maps short options to long options
	explicitlySet map[string]bool   // Tracks which options were explicitly set
}

// NewParsedOptions creates a new options parser
func NewParsedOptions() *ParsedOptions {
	return &ParsedOptions{
		values:        make(map[string]string),
		args:          []string{},
		defs:          make(map[string]*OptionDef),
		shortMap:      make(map[string]string),
		explicitlySet: make(map[string]bool),
	}
}

// DefineOption defines a command-line option
func (p *ParsedOptions) DefineOption(long, short string, optType OptionType, defaultValue, description string) {
	p.defs[long] = &OptionDef{
		Long:        long,
		Short:       short,
		Type:        optType,
		Description: description,
		Default:     defaultValue,
	}
	p.order = append(p.order, long)
	if short != "" {
		p.shortMap[short] = long
	}

	if defaultValue != "" {
		p.values[long] = defaultValue
	}
}

// Parse parses command-line arguments. Options may appear anywhere; "--" ends
// option parsing and "-" on its own is an argument.
func (p *ParsedOptions) Parse(args []string) error {
	consumed := make([]bool, len(args))
	endOfOptions := len(args)
	for i, arg := range args {
		if arg == "--" {
			consumed[i] = true
			endOfOptions = i
			break
		}
	}

	for i := 0; i < endOfOptions; i++ {
		if consumed[i] {
			continue
		}

		arg := args[i]

		if strings.HasPrefix(arg, "--") {
			consumed[i] = true
			if err := p.parseLongOption(arg); err != nil {
				return err
			}
		} else if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			consumed[i] = true
			if err := p.parseShortOptions(arg, args[:endOfOptions], i, consumed); err != nil {
				return err
			}
		}
	}

	for i := 0; i < len(args); i++ {
		if !consumed[i] {
			p.args = append(p.args, args[i])
		}
	}

	return nil
}

// parseLongOption parses a long option (--option or --option=value)
func (p *ParsedOptions) parseLongOption(arg string) error {
	optName := strings.TrimPrefix(arg, "--")
	var optValue string
	hasValue := false

	if equalPos := strings.Index(optName, "="); equalPos != -1 {
		optValue = optName[equalPos+1:]
		optName = optName[:equalPos]
		hasValue = true
	}

	def, exists := p.defs[optName]
	if !exists {
		return fmt.Errorf("unknown option: --%s", optName)
	}

	switch def.Type {
	case OptionTypeBool:
		if !hasValue {
			p.set(optName, "true")
			return nil
		}
		switch optValue {
		case "true", "1":
			p.set(optName, "true")
		case "false", "0":
			p.set(optName, "false")
		default:
			return fmt.Errorf("invalid boolean value for --%s: %s", optName, optValue)
		}
	case OptionTypeString, OptionTypeInt:
		if !hasValue || optValue == "" {
			return fmt.Errorf("option --%s requires a value (use --%s=value)", optName, optName)
		}
		if def.Type == OptionTypeInt {
			if _, err := strconv.Atoi(optValue); err != nil {
				return fmt.Errorf("invalid integer value for --%s: %s", optName, optValue)
			}
		}
		p.set(optName, optValue)
	}

	return nil
}

// parseShortOptions parses short option(s) (-o or -abc)
func (p *ParsedOptions) parseShortOptions(arg string, args []string, i int, consumed []bool) error {
	shortOpts := strings.TrimPrefix(arg, "-")

	// Count occurrences first so -vvv style repetition works for int options
	optCounts := make(map[string]int)
	var seen []string
	for _, r := range shortOpts {
		short := string(r)
		if _, exists := p.shortMap[short]; !exists {
			return fmt.Errorf("unknown option: -%s", short)
		}
		if optCounts[short] == 0 {
			seen = append(seen, short)
		}
		optCounts[short]++
	}

	for _, short := range seen {
		longOpt := p.shortMap[short]
		def := p.defs[longOpt]

		switch def.Type {
		case OptionTypeBool:
			p.set(longOpt, "true")

		case OptionTypeInt:
			p.set(longOpt, strconv.Itoa(optCounts[short]))

		case OptionTypeString:
			nextArg := p.findNextAvailableArg(args, i, consumed)
			if nextArg == "" {
				return fmt.Errorf("option -%s requires a value", short)
			}
			p.set(longOpt, nextArg)
		}
	}

	return nil
}

// findNextAvailableArg finds the next available argument and marks it consumed
func (p *ParsedOptions) findNextAvailableArg(args []string, startIdx int, consumed []bool) string {
	for i := startIdx + 1; i < len(args); i++ {
		if !consumed[i] && !strings.HasPrefix(args[i], "-") {
			consumed[i] = true
			return args[i]
		}
	}
	return ""
}

func (p *ParsedOptions) set(option, value string) {
	p.values[option] = value
	p.explicitlySet[option] = true
}

// GetString returns a string option value
func (p *ParsedOptions) GetString(option string) string {
	return p.values[option]
}

// GetInt returns an integer option value
func (p *ParsedOptions) GetInt(option string) int {
	if val, exists := p.values[option]; exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return 0
}

// GetBool returns a boolean option value
func (p *ParsedOptions) GetBool(option string) bool {
	return p.values[option] == "true"
}

// IsSet returns true if an option was explicitly set
func (p *ParsedOptions) IsSet(option string) bool {
	return p.explicitlySet[option]
}

// GetArgs returns non-option arguments
func (p *ParsedOptions) GetArgs() []string {
	return p.args
}

// ShowOptions writes the option list in definition order
func (p *ParsedOptions) ShowOptions(w io.Writer) {
	for _, long := range p.order {
		def := p.defs[long]

		shortOpt := "    "
		if def.Short != "" {
			shortOpt = fmt.Sprintf("-%s, ", def.Short)
		}

		var valueDesc string
		switch def.Type {
		case OptionTypeString:
			valueDesc = "=VALUE"
		case OptionTypeInt:
			valueDesc = "=N"
		}

		fmt.Fprintf(w, "  %s--%s%s\n", shortOpt, def.Long, valueDesc)
		fmt.Fprintf(w, "        %s\n", def.Description)
	}
}
