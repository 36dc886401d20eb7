package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/nia/interp"
	"github.com/ardnew/nia/value"
)

// Fmt reads input, evaluates every top-level form against a fresh
// interpreter, and prints the resulting values in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format results as native nia syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format results as JSON."`
	YAML   YAML   `cmd:""                    help:"Format results as YAML."`
}

func readSource(path string) (string, error) {
	var file *os.File

	if path == "-" {
		file = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()

		file = f
	}

	return interp.ReadAheadSource(file)
}

// evalAll loads source into a fresh interpreter and returns the values of
// every top-level form, in order. The read goes through the interpreter's
// parse cache, but each call starts from a new interpreter with an empty
// cache, so no parse is reused from one call to the next.
func evalAll(source string) (*interp.Interpreter, []value.Value, error) {
	i := interp.New()

	forms, err := i.ReadCached(source)
	if err != nil {
		return nil, nil, err
	}

	results := make([]value.Value, 0, len(forms))

	for _, form := range forms {
		v, evalErr := i.ExecuteValue(i.RootEnvironment(), form)
		if evalErr != nil {
			return nil, nil, evalErr
		}

		results = append(results, v)
	}

	return i, results, nil
}

// Native formats each evaluated result as native nia syntax.
type Native struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the native-format command.
func (f *Native) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	source, err := readSource(f.Source)
	if err != nil {
		return err
	}

	i, results, evalErr := evalAll(source)
	if evalErr != nil {
		return fmt.Errorf("format native: %w", evalErr)
	}

	for _, v := range results {
		printed, printErr := i.Print(v)
		if printErr != nil {
			return fmt.Errorf("print result: %w", printErr)
		}

		fmt.Println(printed)
	}

	return nil
}

// JSON formats each evaluated result as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	source, err := readSource(j.Source)
	if err != nil {
		return err
	}

	i, results, evalErr := evalAll(source)
	if evalErr != nil {
		return fmt.Errorf("format json: %w", evalErr)
	}

	native := make([]any, 0, len(results))

	for _, v := range results {
		n, nerr := i.ToNative(v)
		if nerr != nil {
			return ErrJSONMarshal.Wrap(nerr)
		}

		native = append(native, n)
	}

	var jsonData []byte
	if j.Indent > 0 {
		jsonData, err = json.MarshalIndent(native, "", strings.Repeat(" ", j.Indent))
	} else {
		jsonData, err = json.Marshal(native)
	}

	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	fmt.Println(string(jsonData))

	return nil
}

// YAML formats each evaluated result as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	source, err := readSource(y.Source)
	if err != nil {
		return err
	}

	i, results, evalErr := evalAll(source)
	if evalErr != nil {
		return fmt.Errorf("format yaml: %w", evalErr)
	}

	native := make([]any, 0, len(results))

	for _, v := range results {
		n, nerr := i.ToNative(v)
		if nerr != nil {
			return ErrYAMLMarshal.Wrap(nerr)
		}

		native = append(native, n)
	}

	var opts []yaml.EncodeOption
	if y.Indent > 0 {
		opts = append(opts, yaml.Indent(y.Indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, native, opts...)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	fmt.Print(string(yamlData))

	return nil
}
