package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolveReadsConfigVariable(t *testing.T) {
	config := `(defv config {:log-level "debug" :log-format "text"})`

	loader := resolve(context.Background(), "config")
	resolver, err := loader(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve loader failed: %v", err)
	}

	mockFlag := &kong.Flag{Value: &kong.Value{Name: "log-level"}}

	val, err := resolver.Resolve(nil, nil, mockFlag)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if val != "debug" {
		t.Errorf("expected log-level=debug, got %v", val)
	}

	mockFlag2 := &kong.Flag{Value: &kong.Value{Name: "log-format"}}

	val2, err := resolver.Resolve(nil, nil, mockFlag2)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if val2 != "text" {
		t.Errorf("expected log-format=text, got %v", val2)
	}
}

func TestResolveMissingVariableYieldsEmptyConfig(t *testing.T) {
	config := `(defv other {:foo "bar"})`

	loader := resolve(context.Background(), "config")
	resolver, err := loader(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve loader failed: %v", err)
	}

	mockFlag := &kong.Flag{Value: &kong.Value{Name: "foo"}}

	val, err := resolver.Resolve(nil, nil, mockFlag)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if val != nil {
		t.Error("expected nil value when config variable is absent")
	}
}

func TestResolveUnderscoreHyphenMapping(t *testing.T) {
	config := `(defv config {:log_level "debug"})`

	loader := resolve(context.Background(), "config")
	resolver, err := loader(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve loader failed: %v", err)
	}

	mockFlag := &kong.Flag{Value: &kong.Value{Name: "log_level"}}

	val, err := resolver.Resolve(nil, nil, mockFlag)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if val != "debug" {
		t.Errorf("expected log_level=debug, got %v", val)
	}

	mockFlag2 := &kong.Flag{Value: &kong.Value{Name: "log-level"}}

	val2, err := resolver.Resolve(nil, nil, mockFlag2)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if val2 != "debug" {
		t.Errorf("expected log-level=debug via underscore mapping, got %v", val2)
	}
}

func TestResolveNumericValuesStringified(t *testing.T) {
	config := `(defv config {:retries 3 :timeout 1.5})`

	loader := resolve(context.Background(), "config")
	resolver, err := loader(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve loader failed: %v", err)
	}

	mockFlag := &kong.Flag{Value: &kong.Value{Name: "retries"}}

	val, err := resolver.Resolve(nil, nil, mockFlag)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if val != "3" {
		t.Errorf("expected retries=\"3\", got %v (%T)", val, val)
	}
}

func TestResolveParseErrorYieldsEmptyConfig(t *testing.T) {
	loader := resolve(context.Background(), "config")
	resolver, err := loader(strings.NewReader("(unterminated"))
	if err != nil {
		t.Fatalf("resolve loader failed: %v", err)
	}

	mockFlag := &kong.Flag{Value: &kong.Value{Name: "log-level"}}

	val, err := resolver.Resolve(nil, nil, mockFlag)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if val != nil {
		t.Error("expected nil value for unparseable config")
	}
}
