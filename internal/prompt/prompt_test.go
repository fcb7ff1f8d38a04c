package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type scriptedDriver struct {
	answers map[string]string
	err     error
	asked   []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if d.err != nil {
		return "", d.err
	}
	answer := d.answers[cfg.Message]
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func TestMissingAsksOnlyForAbsentNames(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{answers: map[string]string{
		`Value for "count":`: "3",
		`Value for "tags":`:  "[a, b]",
		`Value for "title":`: "",
	}}
	locals := map[string]any{"name": "ann"}

	err := Missing(context.Background(), driver, []string{"name", "count", "tags", "title"}, locals)
	if err != nil {
		t.Fatalf("missing: %v", err)
	}

	wantAsked := []string{`Value for "count":`, `Value for "tags":`, `Value for "title":`}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"name": "ann", "count": float64(3), "tags": []any{"a", "b"}}
	if diff := cmp.Diff(want, locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingPropagatesDriverErrors(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{err: ErrAborted}
	err := Missing(context.Background(), driver, []string{"x"}, map[string]any{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	if err := Missing(context.Background(), nil, nil, nil); err == nil {
		t.Fatalf("expected an error without a driver")
	}
}

func TestValidateValue(t *testing.T) {
	t.Parallel()

	if err := validateValue("{a: 1}"); err != nil {
		t.Fatalf("expected a mapping to validate: %v", err)
	}
	if err := validateValue("[unterminated"); err == nil {
		t.Fatalf("expected malformed YAML to fail")
	}
}
