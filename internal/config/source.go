package config

import (
	"strings"

	"github.com/rahul4469/propmate/internal/models"
)

// Source resolves named settings at call time.
type Source interface {
	Resolve(name string, required bool, def string) (string, error)
}

// Env resolves settings from the process environment, after the one-time .env load.
type Env struct{}

func (Env) Resolve(name string, required bool, def string) (string, error) {
	return Resolve(name, required, def)
}

// Static resolves settings from a fixed map. Used by the CLI flags and tests.
type Static map[string]string

func (s Static) Resolve(name string, required bool, def string) (string, error) {
	val := s[name]
	if val == "" {
		val = def
	}
	if required && val == "" {
		return "", models.NewConfigError(name)
	}
	return val, nil
}

// Overlay consults Primary first and falls back to Fallback for unset names.
type Overlay struct {
	Primary  Source
	Fallback Source
}

func (o Overlay) Resolve(name string, required bool, def string) (string, error) {
	if val, _ := o.Primary.Resolve(name, false, ""); val != "" {
		return val, nil
	}
	return o.Fallback.Resolve(name, required, def)
}

func OpenAIAPIKey(src Source) (string, error) {
	return src.Resolve(OpenAIAPIKeyName, true, "")
}

func OpenAIModel(src Source) string {
	model, _ := src.Resolve(OpenAIModelName, false, DefaultOpenAIModel)
	return model
}

func OpenAIBaseURL(src Source) string {
	base, _ := src.Resolve(OpenAIBaseURLName, false, DefaultOpenAIBaseURL)
	return strings.TrimRight(base, "/")
}

func TavilyAPIKey(src Source) (string, error) {
	return src.Resolve(TavilyAPIKeyName, true, "")
}

func TavilyBaseURL(src Source) string {
	base, _ := src.Resolve(TavilyBaseURLName, false, DefaultTavilyBaseURL)
	return strings.TrimRight(base, "/")
}
