package command

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type ArgKind int

const (
	ArgString ArgKind = iota
	ArgInt
)

// Arg declares one positional argument or flag.
type Arg struct {
	Name        string
	Description string
	Kind        ArgKind
	Required    bool
	Default     string
	// consumes the rest of the input, positional only
	Rest bool
	// in runes, 0 means unbounded
	MaxLen int
	// inclusive bounds for ArgInt, ignored when both are 0
	Min, Max int
	Choices  []string
}

func (a Arg) positional() string {
	name := a.Name
	if a.Rest {
		name += "..."
	}
	switch {
	case a.Required:
		return "<" + name + ">"
	case a.Default != "":
		return "[" + name + "=" + a.Default + "]"
	default:
		return "[" + name + "]"
	}
}

func (a Arg) flag() string {
	s := "-" + a.Name + " <" + a.Name + ">"
	if a.Required {
		return s
	}
	return "[" + s + "]"
}

// Args are the validated arguments of an invocation.
type Args struct {
	values map[string]string
	ints   map[string]int
}

func (a Args) String(name string) string {
	return a.values[name]
}

func (a Args) Int(name string) int {
	return a.ints[name]
}

func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

type token struct {
	text       string
	start, end int
}

// tokenize splits on whitespace, honouring double quotes. Offsets index
// into s so callers can take the raw remainder.
func tokenize(s string) []token {
	var tokens []token
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		if r == '"' {
			if end := strings.IndexByte(s[i+1:], '"'); end >= 0 {
				tokens = append(tokens, token{text: s[i+1 : i+1+end], start: start, end: i + end + 2})
				i += end + 2
				continue
			}
		}
		for i < len(s) {
			r, size = utf8.DecodeRuneInString(s[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		tokens = append(tokens, token{text: s[start:i], start: start, end: i})
	}
	return tokens
}

// Parse turns raw text following the command name into validated Args.
func (c *Command) Parse(raw string) (Args, error) {
	values, err := c.parseText(raw)
	if err != nil {
		return Args{}, err
	}
	return c.Bind(values)
}

func (c *Command) parseText(raw string) (map[string]string, error) {
	values := map[string]string{}
	tokens := tokenize(raw)

	// positional part ends at the first known flag
	cut := len(raw)
	flagAt := len(tokens)
	if len(c.Flags) > 0 {
		for i, t := range tokens {
			if _, ok := c.lookupFlag(t.text); ok {
				cut, flagAt = t.start, i
				break
			}
		}
	}

	positional := tokens[:flagAt]
	idx := 0
	for _, a := range c.Args {
		if a.Rest {
			if idx < len(positional) {
				values[a.Name] = unquote(strings.TrimSpace(raw[positional[idx].start:cut]))
			}
			idx = len(positional)
			break
		}
		if idx < len(positional) {
			values[a.Name] = positional[idx].text
			idx++
		}
	}
	if len(c.Args) == 0 && len(positional) > 0 && len(c.Flags) > 0 {
		return nil, &UsageError{Command: c, Reason: fmt.Sprintf("unexpected %q before the first flag", positional[0].text)}
	}

	if flagAt == len(tokens) {
		return values, nil
	}
	return values, c.parseFlags(raw[cut:], values)
}

func (c *Command) parseFlags(raw string, values map[string]string) error {
	tokens := tokenize(raw)
	current := ""
	valueStart := 0
	commit := func(end int) error {
		if current == "" {
			return nil
		}
		v := unquote(strings.TrimSpace(raw[valueStart:end]))
		if v == "" {
			return &UsageError{Command: c, Reason: fmt.Sprintf("flag -%s needs a value", current)}
		}
		values[current] = v
		return nil
	}
	for _, t := range tokens {
		f, ok := c.lookupFlag(t.text)
		if !ok {
			continue
		}
		if err := commit(t.start); err != nil {
			return err
		}
		if _, dup := values[f.Name]; dup {
			return &UsageError{Command: c, Reason: fmt.Sprintf("flag -%s given twice", f.Name)}
		}
		current = f.Name
		valueStart = t.end
	}
	return commit(len(raw))
}

func (c *Command) lookupFlag(tok string) (Arg, bool) {
	if len(tok) < 2 || tok[0] != '-' {
		return Arg{}, false
	}
	name := strings.ToLower(tok[1:])
	for _, f := range c.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Arg{}, false
}

// unquote strips the quotes of a value that is one quoted token; text
// holding several tokens is kept as typed.
func unquote(s string) string {
	tokens := tokenize(s)
	if len(tokens) == 1 && tokens[0].start == 0 && tokens[0].end == len(s) {
		return tokens[0].text
	}
	return s
}

// Bind applies defaults, converts and validates raw values against the
// declared arguments and flags. Missing or malformed input is a
// UsageError; a value that breaks a declared constraint is a
// ValidationError.
func (c *Command) Bind(values map[string]string) (Args, error) {
	args := Args{values: map[string]string{}, ints: map[string]int{}}
	declared := make([]Arg, 0, len(c.Args)+len(c.Flags))
	declared = append(declared, c.Args...)
	declared = append(declared, c.Flags...)

	for _, a := range declared {
		v := strings.TrimSpace(values[a.Name])
		if v == "" {
			if a.Required {
				return Args{}, &UsageError{Command: c, Reason: fmt.Sprintf("missing %s", a.Name)}
			}
			if a.Default == "" {
				continue
			}
			v = a.Default
		}
		if err := a.validate(c, v, args); err != nil {
			return Args{}, err
		}
		args.values[a.Name] = a.canonical(v)
	}
	return args, nil
}

// canonical maps v onto the declared spelling of the choice it matches.
func (a Arg) canonical(v string) string {
	for _, choice := range a.Choices {
		if strings.EqualFold(choice, v) {
			return choice
		}
	}
	return v
}

func (a Arg) validate(c *Command, v string, args Args) error {
	switch a.Kind {
	case ArgInt:
		n, err := strconv.Atoi(v)
		if err != nil {
			return &UsageError{Command: c, Reason: fmt.Sprintf("%s must be a whole number", a.Name)}
		}
		if (a.Min != 0 || a.Max != 0) && (n < a.Min || n > a.Max) {
			return &ValidationError{
				Arg:     a.Name,
				Message: fmt.Sprintf("`%s` must be between %d and %d (got %d).", a.Name, a.Min, a.Max, n),
			}
		}
		args.ints[a.Name] = n
	default:
		if a.MaxLen > 0 {
			if n := utf8.RuneCountInString(v); n > a.MaxLen {
				return &ValidationError{
					Arg:     a.Name,
					Message: fmt.Sprintf("`%s` must be at most %d characters (got %d).", a.Name, a.MaxLen, n),
				}
			}
		}
	}
	if len(a.Choices) > 0 {
		for _, choice := range a.Choices {
			if strings.EqualFold(choice, v) {
				return nil
			}
		}
		return &ValidationError{
			Arg:     a.Name,
			Message: fmt.Sprintf("`%s` must be one of %s.", a.Name, strings.Join(a.Choices, ", ")),
		}
	}
	return nil
}
