// Command shadowtree builds, commits and inspects shadow trees.
package main

import (
	"os"

	"github.com/go-drift/shadow/cmd/shadowtree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
