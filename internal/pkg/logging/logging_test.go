// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package logging

import (
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
)

func TestLogWriter(t *testing.T) {
	var lines []string
	l := funcr.New(func(prefix, args string) { lines = append(lines, args) }, funcr.Options{})
	w := LogWriter(l, 0)
	fmt.Fprint(w, "first line\nsecond ")
	fmt.Fprint(w, "line\n\n")
	if assert.Len(t, lines, 2) {
		assert.Contains(t, lines[0], `"msg"="first line"`)
		assert.Contains(t, lines[1], `"msg"="second line"`)
	}
}

func TestJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, JSON(map[string]int{"a": 1}).MarshalLog())
	assert.Equal(t, `"json: unsupported type: chan int"`, JSONString(make(chan int)))
	var _ logr.Marshaler = JSON(nil)
}
