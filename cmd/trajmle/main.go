// Idiomatic entrypoint for the Cobra CLI; dispatches to the root command in
// internal/cli/root.go.
package main

import (
	"trajmle/internal/cli"
)

func main() {
	cli.Execute()
}
