package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

// TestNativeFmtValidSyntax tests that valid syntax is formatted correctly.
func TestNativeFmtValidSyntax(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		contains string
	}{
		{
			name:     "simple definition",
			input:    "(defv test 123)",
			wantErr:  false,
			contains: "123",
		},
		{
			name:     "definition with object",
			input:    `(defv test {:a 1 :b 2})`,
			wantErr:  false,
			contains: "a",
		},
		{
			name:     "multiple definitions",
			input:    "(defv a 1) (defv b 2)",
			wantErr:  false,
			contains: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "nia-test-*.nia")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if _, err := tmpfile.WriteString(tt.input); err != nil {
				t.Fatal(err)
			}
			if err := tmpfile.Close(); err != nil {
				t.Fatal(err)
			}

			native := &Native{Source: tmpfile.Name()}

			err = native.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("Native.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestNativeFmtInvalidSyntax tests that invalid syntax produces parse/eval
// errors.
func TestNativeFmtInvalidSyntax(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "unbalanced parens",
			input:   "(defv test 123",
			wantErr: true,
		},
		{
			name:    "unbound symbol",
			input:   "(+ undefined-symbol 1)",
			wantErr: true,
		},
		{
			name:    "unclosed object",
			input:   "(defv test {:a 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "nia-test-*.nia")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if _, err := tmpfile.WriteString(tt.input); err != nil {
				t.Fatal(err)
			}
			if err := tmpfile.Close(); err != nil {
				t.Fatal(err)
			}

			native := &Native{Source: tmpfile.Name()}

			err = native.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("Native.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestNativeFmtStdin tests reading from stdin.
func TestNativeFmtStdin(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid from stdin",
			input:   "(defv test 123)",
			wantErr: false,
		},
		{
			name:    "invalid from stdin",
			input:   "(defv test 123",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldStdin := os.Stdin
			defer func() { os.Stdin = oldStdin }()

			r, w, err := os.Pipe()
			if err != nil {
				t.Fatal(err)
			}
			os.Stdin = r

			go func() {
				defer w.Close()
				io.WriteString(w, tt.input)
			}()

			native := &Native{Source: "-"}

			err = native.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("Native.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestJSONFmtInvalidSyntax tests that JSON format also catches eval errors.
func TestJSONFmtInvalidSyntax(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "unbalanced parens",
			input:   "(defv test 123",
			wantErr: true,
		},
		{
			name:    "valid syntax",
			input:   "(defv test 123)",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "nia-test-*.nia")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if _, err := tmpfile.WriteString(tt.input); err != nil {
				t.Fatal(err)
			}
			if err := tmpfile.Close(); err != nil {
				t.Fatal(err)
			}

			json := &JSON{Indent: 2, Source: tmpfile.Name()}

			err = json.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("JSON.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestYAMLFmtInvalidSyntax tests that YAML format also catches eval errors.
func TestYAMLFmtInvalidSyntax(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "unbalanced parens",
			input:   "(defv test 123",
			wantErr: true,
		},
		{
			name:    "valid syntax",
			input:   "(defv test 123)",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "nia-test-*.nia")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if _, err := tmpfile.WriteString(tt.input); err != nil {
				t.Fatal(err)
			}
			if err := tmpfile.Close(); err != nil {
				t.Fatal(err)
			}

			yaml := &YAML{Indent: 2, Source: tmpfile.Name()}

			err = yaml.Run(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("YAML.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestFormatNativeOutput tests the Native.Run printed output.
func TestFormatNativeOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:  "simple definition",
			input: "(defv test 123)",
			contains: []string{
				"123",
			},
		},
		{
			name:  "object value",
			input: `(defv test {:a 1 :b 2})`,
			contains: []string{
				"a",
				"b",
			},
		},
		{
			name:  "multiple forms",
			input: "(defv a 1) (defv b 2)",
			contains: []string{
				"1",
				"2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "nia-test-*.nia")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if _, err := tmpfile.WriteString(tt.input); err != nil {
				t.Fatal(err)
			}
			if err := tmpfile.Close(); err != nil {
				t.Fatal(err)
			}

			oldStdout := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w

			native := &Native{Source: tmpfile.Name()}

			err = native.Run(context.Background())

			w.Close()
			os.Stdout = oldStdout

			if err != nil {
				t.Fatalf("Native.Run() unexpected error = %v", err)
			}

			var buf bytes.Buffer
			io.Copy(&buf, r)
			output := buf.String()

			for _, expected := range tt.contains {
				if !strings.Contains(output, expected) {
					t.Errorf("Native.Run() output = %q, want to contain %q", output, expected)
				}
			}
		})
	}
}
