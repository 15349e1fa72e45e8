// Command petlink is a terminal client for the pet-care marketplace.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"petlink/internal/app"
)

func main() {
	exitCode := runSafely(os.Args[1:], runWithArgs, os.Stderr)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func runSafely(args []string, runner func([]string) int, errWriter io.Writer) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			printError(errWriter, fmt.Sprintf("panic recovered: %v\n%s", r, debug.Stack()))
			exitCode = 1
		}
	}()
	return runner(args)
}

func runWithArgs(args []string) int {
	c := &cli{in: os.Stdin}
	defer c.close()

	root := newRootCmd(c)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		switch {
		case errors.Is(err, app.ErrNotConfirmed):
			printWarning(root.ErrOrStderr(), "Aborted")
		case !app.IsReported(err):
			printError(root.ErrOrStderr(), err.Error())
		}
		return 1
	}
	return 0
}
