// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// Package enumflag is a flag value restricted to a set of names.
// Implements the standard flag.Value and the cobra pflag.Value interfaces.
package enumflag

import (
	"fmt"
	"slices"
	"strings"
)

type Value struct {
	Value   string
	Allowed []string
}

// New value with a default, allowed names are sorted.
// An empty default is allowed even if it is not in allowed, meaning "not set".
func New(value string, allowed ...string) *Value {
	allowed = slices.Clone(allowed)
	slices.Sort(allowed)
	return &Value{Allowed: allowed, Value: value}
}

func (v *Value) String() string { return v.Value }

func (v *Value) Set(x string) error {
	if !slices.Contains(v.Allowed, x) {
		return fmt.Errorf("%q is not one of: %v", x, strings.Join(v.Allowed, ", "))
	}
	v.Value = x
	return nil
}

func (v *Value) Type() string { return "string" }

// DocString returns msg followed by the allowed names, for flag usage.
func (v *Value) DocString(msg string) string {
	w := &strings.Builder{}
	if msg != "" {
		fmt.Fprintf(w, "%v: ", msg)
	}
	fmt.Fprintf(w, "one of %v", strings.Join(v.Allowed, ", "))
	return w.String()
}
