// Package prompt asks for render locals a template references but the
// caller did not supply.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-jade/pkg/expr"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("prompt: aborted")

// InputConfig configures a text input prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// Driver abstracts the terminal so the prompt flow can be tested without
// one.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
}

type surveyDriver struct{}

// NewSurveyDriver returns a Driver backed by survey.
func NewSurveyDriver() Driver {
	return surveyDriver{}
}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	input := &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return cfg.Validator(text)
		}))
	}
	if err := survey.AskOne(input, &out, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return out, nil
}

// Missing asks for every name absent from locals and stores the answers,
// decoded as YAML, in locals. Empty answers leave the name undefined.
func Missing(ctx context.Context, driver Driver, names []string, locals map[string]any) error {
	if driver == nil {
		return errors.New("prompt: driver is required")
	}
	for _, name := range names {
		if _, ok := locals[name]; ok {
			continue
		}
		answer, err := driver.Input(ctx, InputConfig{
			Message:   fmt.Sprintf("Value for %q:", name),
			Help:      "YAML value: numbers, lists and mappings are decoded, anything else is a string.",
			Validator: validateValue,
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			continue
		}
		value, err := expr.DecodeYAML([]byte(answer))
		if err != nil {
			return fmt.Errorf("prompt: %s: %w", name, err)
		}
		locals[name] = value
	}
	return nil
}

func validateValue(answer string) error {
	if _, err := expr.DecodeYAML([]byte(answer)); err != nil {
		return errors.New("not a valid YAML value")
	}
	return nil
}
