// The main package for the newscrawl executable.
package main

import (
	"github.com/guanyuming-he/newscrawl/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
