package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ardnew/nia/interp"
)

// Eval evaluates a definition from a source file with the given arguments.
type Eval struct {
	Name   string   `arg:"" help:"Function identifier to evaluate"           name:"name"`
	Args   []string `arg:"" help:"Arguments to bind to definition parameters" name:"args" optional:""`
	Source string   `       help:"Source input file or '-' for stdin"                                 default:"-" short:"f"`
}

// Run executes the eval command: it loads Source into a fresh interpreter,
// then calls the function bound to Name with Args read as Lisp literals.
func (e *Eval) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	var file *os.File
	if e.Source == stdinSource {
		file = os.Stdin
	} else {
		file, err = os.Open(e.Source)
		if err != nil {
			return err
		}
		defer file.Close()
	}

	data, err := interp.ReadAheadSource(file)
	if err != nil {
		return err
	}

	i := interp.New()

	forms, readErr := i.ReadCached(data)
	if readErr != nil {
		return fmt.Errorf("load %s: %w", e.Source, readErr)
	}

	for _, form := range forms {
		if _, evalErr := i.ExecuteValue(i.RootEnvironment(), form); evalErr != nil {
			return fmt.Errorf("load %s: %w", e.Source, evalErr)
		}
	}

	call := "(" + e.Name
	for _, arg := range e.Args {
		call += " " + arg
	}

	call += ")"

	result, evalErr := i.Execute(call)
	if evalErr != nil {
		return fmt.Errorf("eval %s: %w", e.Name, evalErr)
	}

	printed, printErr := i.Print(result)
	if printErr != nil {
		return fmt.Errorf("print result: %w", printErr)
	}

	fmt.Println(printed)

	return nil
}
