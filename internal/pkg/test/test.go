// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package test contains helpers for writing tests
package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/archcanvas/archcanvas/pkg/model"
)

// SkipIfNoCommand skips a test if the cmd is not found in PATH
func SkipIfNoCommand(t *testing.T, cmd string) {
	t.Helper()
	if _, err := exec.LookPath(cmd); err != nil {
		skipf(t, "command %q not available", cmd)
	}
}

func skipf(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	msg := fmt.Sprintf(format, args...)
	noSkip := os.Getenv("TEST_NO_SKIP")
	if noSkip != "" {
		t.Fatalf("TEST_NO_SKIP=%v failing: %v", noSkip, msg)
	} else {
		t.Skip(msg)
	}
}

// ListenPort returns a free ephemeral port for listening.
func ListenPort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// PanicErr panics if err is not nil
func PanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// Must panics if err is not nil, else returns v.
func Must[T any](v T, err error) T { PanicErr(err); return v }

// JSONString returns the JSON marshaled string from v, or the error message if marshal fails
func JSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// JSONPretty returns an indented JSON string, or error message if marshal fails.
func JSONPretty(v any) string {
	w := &bytes.Buffer{}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return err.Error()
	}
	return w.String()
}

// FakeMain runs main with os.Args set to args, returns captured stdout and stderr.
// os.Args, os.Stdout and os.Stderr are restored before returning.
func FakeMain(args []string, main func()) (stdout, stderr []byte) {
	return FakeMainStdin("", args, main)
}

// FakeMainStdin is FakeMain with stdin as os.Stdin.
// If args is nil, os.Args is not changed.
func FakeMainStdin(stdin string, args []string, main func()) (stdout, stderr []byte) {
	saveArgs, saveIn, saveOut, saveErr := os.Args, os.Stdin, os.Stdout, os.Stderr
	defer func() { os.Args, os.Stdin, os.Stdout, os.Stderr = saveArgs, saveIn, saveOut, saveErr }()
	if args != nil {
		os.Args = args
	}
	inR, inW := Must2(os.Pipe())
	outR, outW := Must2(os.Pipe())
	errR, errW := Must2(os.Pipe())
	os.Stdin, os.Stdout, os.Stderr = inR, outW, errW
	go func() { _, _ = io.Copy(inW, strings.NewReader(stdin)); _ = inW.Close() }()
	outC, errC := drain(outR), drain(errR)
	func() {
		defer func() { _ = outW.Close(); _ = errW.Close() }()
		main()
	}()
	_ = inR.Close()
	return <-outC, <-errC
}

// Must2 panics if err is not nil, else returns v1, v2.
func Must2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) { PanicErr(err); return v1, v2 }

func drain(r io.ReadCloser) chan []byte {
	c := make(chan []byte, 1)
	go func() {
		defer r.Close()
		b, _ := io.ReadAll(r)
		c <- b
	}()
	return c
}

// View returns a context view with a person using a software system.
// Nodes have no stored positions.
func View(id string) *model.View {
	return &model.View{
		ID:        id,
		ProjectID: "p1",
		Type:      model.ContextView,
		Name:      "View " + id,
		Nodes: []model.Node{
			{ID: "u1", Type: model.Person, Name: "User", ViewID: id},
			{ID: "s1", Type: model.SoftwareSystem, Name: "System", Description: "Does things", ViewID: id},
		},
		Relations: []model.Relation{{ID: "r1", SourceID: "u1", TargetID: "s1", Description: "Uses"}},
	}
}
