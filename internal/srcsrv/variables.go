package srcsrv

import (
	"regexp"
	"strconv"
	"strings"
)

// Variable is one NAME=VALUE line of the variables section.
// Literal values are escaped on output. Template values carry intentional
// %NAME% substitution markers and are written verbatim.
type Variable struct {
	Name     string
	Value    string
	Template bool
}

// Literal returns a variable whose value is plain data.
func Literal(name, value string) Variable {
	return Variable{Name: name, Value: value}
}

// Template returns a variable whose value is expanded by the debugger.
func Template(name, value string) Variable {
	return Variable{Name: name, Value: value, Template: true}
}

// Output returns the value as it appears in the stream.
func (v Variable) Output() string {
	if v.Template {
		return v.Value
	}
	return Escape(v.Value)
}

// Variables is an ordered set of variables. Names compare case-insensitively,
// like the debugger does.
type Variables []Variable

// Get returns the variable with the given name.
func (vs Variables) Get(name string) (Variable, bool) {
	if i := vs.index(name); i >= 0 {
		return vs[i], true
	}
	return Variable{}, false
}

// Set replaces a variable in place, or appends it when the name is new.
func (vs Variables) Set(v Variable) Variables {
	out := vs.Clone()
	if i := out.index(v.Name); i >= 0 {
		out[i] = v
		return out
	}
	return append(out, v)
}

// Delete removes a variable and returns it.
func (vs Variables) Delete(name string) (Variables, Variable, bool) {
	i := vs.index(name)
	if i < 0 {
		return vs.Clone(), Variable{}, false
	}
	removed := vs[i]
	out := make(Variables, 0, len(vs)-1)
	out = append(out, vs[:i]...)
	out = append(out, vs[i+1:]...)
	return out, removed, true
}

// Clone returns a copy that can be modified independently.
func (vs Variables) Clone() Variables {
	out := make(Variables, len(vs))
	copy(out, vs)
	return out
}

// Names lists the variable names in order.
func (vs Variables) Names() []string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return names
}

func (vs Variables) index(name string) int {
	for i, v := range vs {
		if strings.EqualFold(v.Name, name) {
			return i
		}
	}
	return -1
}

// placeholderRe matches an escaped percent sign or a positional %varN% marker.
// Escaped percent signs are matched first so %%var2%% is left alone.
var placeholderRe = regexp.MustCompile(`%%|%(?i:var)([0-9]+)%`)

// RenumberPlaceholders rewrites every %varN% marker in value to %varM% with
// M = fn(N).
func RenumberPlaceholders(value string, fn func(int) int) string {
	return placeholderRe.ReplaceAllStringFunc(value, func(m string) string {
		if m == "%%" {
			return m
		}
		n, err := strconv.Atoi(m[4 : len(m)-1])
		if err != nil {
			return m
		}
		return "%var" + strconv.Itoa(fn(n)) + "%"
	})
}

// RenumberVariables applies RenumberPlaceholders to every template value.
func RenumberVariables(vs Variables, fn func(int) int) Variables {
	out := vs.Clone()
	for i, v := range out {
		if v.Template {
			out[i].Value = RenumberPlaceholders(v.Value, fn)
		}
	}
	return out
}

// Placeholders returns the positional indexes referenced by value, in order.
func Placeholders(value string) []int {
	var idx []int
	for _, m := range placeholderRe.FindAllStringSubmatch(value, -1) {
		if m[0] == "%%" {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			idx = append(idx, n)
		}
	}
	return idx
}
