// franz is an ahead-of-time compiler and runtime for a small closure-based expression
// language (SPEC_FULL.md §1): it parses source, lowers it to LLVM IR, links the result
// against an embedded C runtime, and execs the produced binary.
package main

import (
	"fmt"
	"os"

	"franz/src/driver"
)

func main() {
	opt, err := driver.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	log := driver.NewLogger(opt.Debug)
	code, err := driver.Run(opt, log)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
	}
	os.Exit(code)
}
