package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nia/log"
	"github.com/ardnew/nia/profile"
)

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config namespace undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	source := i.buildSource(ctx)

	if _, err = file.WriteString(source); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildSource renders a "(defv config {...})" nia script capturing the
// current flag values.
func (i *Init) buildSource(ctx context.Context) string {
	ktx := kongContextFrom(ctx)

	prefixIgnore := []string{"help", profile.Tag}

	var b strings.Builder

	b.WriteString("(defv config\n  {")

	first := true

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		literal := i.flagLiteral(ctx, flag.Name)
		if literal == "" {
			continue
		}

		if !first {
			b.WriteString("\n   ")
		}

		first = false

		b.WriteString(":")
		b.WriteString(strings.ReplaceAll(flag.Name, "_", "-"))
		b.WriteString(" ")
		b.WriteString(literal)
	}

	b.WriteString("})\n")

	return b.String()
}

// flagLiteral renders the nia literal syntax for a CLI flag's current value,
// or "" if the flag is unset.
func (i *Init) flagLiteral(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)

	idx := slices.IndexFunc(ktx.Model.Flags, func(flag *kong.Flag) bool {
		return flag.Name == name
	})
	if idx == -1 {
		return ""
	}

	val := ktx.FlagValue(ktx.Model.Flags[idx])
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case bool:
		if v {
			return "#t"
		}

		return "#f"

	case string:
		if v == "" {
			return ""
		}

		return strconv.Quote(v)

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)

	case float32, float64:
		return fmt.Sprint(v)

	case []string:
		if len(v) == 0 {
			return ""
		}

		quoted := make([]string, len(v))
		for idx, s := range v {
			quoted[idx] = strconv.Quote(s)
		}

		return "'(" + strings.Join(quoted, " ") + ")"

	case []int:
		if len(v) == 0 {
			return ""
		}

		return "'(" + joinInts(v) + ")"

	case []int64:
		if len(v) == 0 {
			return ""
		}

		strs := make([]string, len(v))
		for idx, n := range v {
			strs[idx] = strconv.FormatInt(n, 10)
		}

		return "'(" + strings.Join(strs, " ") + ")"

	case []float64:
		if len(v) == 0 {
			return ""
		}

		strs := make([]string, len(v))
		for idx, n := range v {
			strs[idx] = fmt.Sprint(n)
		}

		return "'(" + strings.Join(strs, " ") + ")"

	case []bool:
		if len(v) == 0 {
			return ""
		}

		strs := make([]string, len(v))
		for idx, bv := range v {
			if bv {
				strs[idx] = "#t"
			} else {
				strs[idx] = "#f"
			}
		}

		return "'(" + strings.Join(strs, " ") + ")"

	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}

func joinInts(v []int) string {
	strs := make([]string, len(v))
	for idx, n := range v {
		strs[idx] = strconv.Itoa(n)
	}

	return strings.Join(strs, " ")
}
