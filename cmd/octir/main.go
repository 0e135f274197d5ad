// cmd/octir/main.go
package main

import (
	"fmt"
	"os"

	"octoir/internal/astiface"
	"octoir/internal/irbuild"
	"octoir/internal/jit/llvmjit"
	"octoir/internal/staticir"
)

// commandAliases mirrors the single short flag this driver supports; the
// library itself has no command surface, there is nothing else to alias.
var commandAliases = map[string]string{
	"d": "demo",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "demo":
		runDemo()
	default:
		fmt.Fprintf(os.Stderr, "octir: unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("usage: octir <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  demo (d)   build and JIT-compile a small hardcoded function, print its IR")
}

// runDemo builds `add_one(in) = in + 1` by hand through the astiface
// contract, the same shape a real parser's output would take, then drives
// it through irbuild, staticir, and llvmjit end to end.
func runDemo() {
	body := []astiface.Node{
		&astiface.Return{Value: &astiface.Binary{
			Op:    "add",
			Left:  &astiface.Identifier{Name: "in"},
			Right: &astiface.Constant{Type: "int32", Bytes: []byte{1}},
		}},
	}

	fn, err := irbuild.New("add_one").Build([]string{"in"}, body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "octir: build failed: %v\n", err)
		os.Exit(1)
	}

	sf := staticir.Lower(fn)

	backend := llvmjit.New(llvmjit.Options{})
	backend.EnablePrinting(true)
	handle, err := backend.Compile(sf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "octir: compile failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("; compiled %s\n", handle)
	fmt.Print(handle.IR)
}
