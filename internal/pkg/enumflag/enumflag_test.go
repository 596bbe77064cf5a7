// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package enumflag

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	v := New("yaml", "yaml", "json", "json-pretty")
	assert.Equal(t, []string{"json", "json-pretty", "yaml"}, v.Allowed)
	assert.Equal(t, "format: one of json, json-pretty, yaml", v.DocString("format"))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(v, "output", v.DocString(""))
	require.NoError(t, fs.Parse([]string{"--output", "json"}))
	assert.Equal(t, "json", v.String())
	assert.Error(t, fs.Parse([]string{"--output", "xml"}))
	assert.Equal(t, "json", v.String())
}
