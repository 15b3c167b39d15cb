package main

import (
	"errors"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		if !errors.Is(err, errSyncFailed) {
			printError("%v", err)
		}
		os.Exit(1)
	}
}
