package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nia/interp"
)

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string) // setup function to prepare test
		wantErr bool
	}{
		{
			name:    "create_new_config",
			force:   false,
			setup:   nil, // no pre-existing file
			wantErr: false,
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				// Create existing file
				if err := os.WriteFile(path, []byte("existing content"), 0644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: false,
		},
		{
			name:  "fail_without_force",
			force: false,
			setup: func(t *testing.T, path string) {
				// Create existing file
				if err := os.WriteFile(path, []byte("existing content"), 0644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: true, // should fail because file exists
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Create temp directory for config
			tmpDir, err := os.MkdirTemp("", "nia-init-test-*")
			if err != nil {
				t.Fatal(err)
			}
			defer os.RemoveAll(tmpDir)

			confPath := filepath.Join(tmpDir, "config.nia")

			// Run setup if provided
			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			// Create a Kong context with vars
			var cli struct{}
			parser, err := kong.New(&cli, kong.Vars{
				ConfigIdentifier: confPath,
			})
			if err != nil {
				t.Fatal(err)
			}

			kctx, err := parser.Parse(nil)
			if err != nil {
				t.Fatal(err)
			}

			// Create context with kong context
			ctx := WithContext(context.Background(), kctx)

			// Run init command
			initCmd := &Init{Force: tt.force}
			err = initCmd.Run(ctx)

			if (err != nil) != tt.wantErr {
				t.Errorf("Init.Run() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			// Verify file was created if no error expected
			if !tt.wantErr {
				if _, err := os.Stat(confPath); os.IsNotExist(err) {
					t.Error("Init.Run() did not create config file")
				}

				// Verify file content is valid nia syntax
				content, err := os.ReadFile(confPath)
				if err != nil {
					t.Fatal(err)
				}

				i := interp.New()
				if _, err := i.Execute(string(content)); err != nil {
					t.Errorf("Generated config is not valid nia syntax: %v", err)
				}
			}
		})
	}
}

// TestInitBuildSource tests that buildSource renders a valid
// "(defv config {...})" script from the current flag values.
func TestInitBuildSource(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool   `name:"verbose" help:"Enable verbose output"`
		Output  string `name:"output" help:"Output file"`
		Count   int    `name:"count" help:"Number of items"`
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{"--verbose", "--output=test.txt", "--count=5"})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(context.Background(), kctx)

	initCmd := &Init{}
	source := initCmd.buildSource(ctx)

	if source == "" {
		t.Fatal("buildSource() returned empty string")
	}

	if !strings.HasPrefix(source, "(defv config") {
		t.Errorf("buildSource() does not start with \"(defv config\", got: %s", source)
	}

	if !strings.Contains(source, ":verbose #t") {
		t.Errorf("buildSource() missing :verbose #t, got: %s", source)
	}

	if !strings.Contains(source, `:output "test.txt"`) {
		t.Errorf("buildSource() missing :output literal, got: %s", source)
	}

	if !strings.Contains(source, ":count 5") {
		t.Errorf("buildSource() missing :count literal, got: %s", source)
	}

	// The generated source must itself evaluate cleanly.
	i := interp.New()
	if _, err := i.Execute(source); err != nil {
		t.Errorf("buildSource() produced unparseable nia: %v\nsource:\n%s", err, source)
	}
}

// TestInitFlagLiteral tests the flagLiteral method with different flag types.
func TestInitFlagLiteral(t *testing.T) {
	t.Parallel()

	var cli struct {
		FlagBool    bool     `name:"flag-bool"`
		FlagString  string   `name:"flag-string"`
		FlagEmpty   string   `name:"flag-empty"`
		FlagInt     int      `name:"flag-int"`
		FlagStrings []string `name:"flag-strings"`
		FlagInts    []int    `name:"flag-ints"`
	}

	tests := []struct {
		name     string
		flagName string
		args     []string
		want     string
	}{
		{
			name:     "bool_true",
			flagName: "flag-bool",
			args:     []string{"--flag-bool"},
			want:     "#t",
		},
		{
			name:     "string_value",
			flagName: "flag-string",
			args:     []string{"--flag-string=test"},
			want:     `"test"`,
		},
		{
			name:     "empty_string",
			flagName: "flag-empty",
			args:     nil,
			want:     "",
		},
		{
			name:     "int_value",
			flagName: "flag-int",
			args:     []string{"--flag-int=42"},
			want:     "42",
		},
		{
			name:     "string_slice",
			flagName: "flag-strings",
			args:     []string{"--flag-strings=a,b,c"},
			want:     `'("a" "b" "c")`,
		},
		{
			name:     "int_slice",
			flagName: "flag-ints",
			args:     []string{"--flag-ints=1,2,3"},
			want:     "'(1 2 3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parser, err := kong.New(&cli)
			if err != nil {
				t.Fatal(err)
			}

			kctx, err := parser.Parse(tt.args)
			if err != nil {
				t.Fatal(err)
			}

			ctx := WithContext(context.Background(), kctx)

			initCmd := &Init{}
			got := initCmd.flagLiteral(ctx, tt.flagName)

			if got != tt.want {
				t.Errorf("flagLiteral(%q) = %q, want %q", tt.flagName, got, tt.want)
			}
		})
	}
}

// TestInitWithInvalidPath tests init with an invalid file path.
func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	// Use an invalid path (directory that doesn't exist)
	invalidPath := "/nonexistent/directory/config.nia"

	// Create a Kong context with vars
	var cli struct{}
	parser, err := kong.New(&cli, kong.Vars{
		ConfigIdentifier: invalidPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(context.Background(), kctx)

	// Run init command
	initCmd := &Init{Force: false}
	err = initCmd.Run(ctx)

	// Should fail because directory doesn't exist
	if err == nil {
		t.Error("Init.Run() expected error for invalid path, got nil")
	}
}

// TestInitFormatOutput tests that init generates properly formatted output.
func TestInitFormatOutput(t *testing.T) {
	t.Parallel()

	// Create temp directory
	tmpDir, err := os.MkdirTemp("", "nia-init-format-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	confPath := filepath.Join(tmpDir, "config.nia")

	// Create a Kong context with vars
	var cli struct {
		Test string `name:"test" help:"Test flag"`
	}
	parser, err := kong.New(&cli, kong.Vars{
		ConfigIdentifier: confPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{"--test=value"})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(context.Background(), kctx)

	// Run init command
	initCmd := &Init{Force: false}
	err = initCmd.Run(ctx)
	if err != nil {
		t.Fatalf("Init.Run() unexpected error = %v", err)
	}

	// Read generated content
	content, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	output := string(content)

	// Verify it contains expected structure
	if !strings.Contains(output, ConfigIdentifier) {
		t.Errorf("Output missing config identifier, got: %s", output)
	}

	// Verify proper indentation (should be 2 spaces by default)
	if !strings.Contains(output, "  ") {
		t.Error("Output missing expected indentation")
	}
}
