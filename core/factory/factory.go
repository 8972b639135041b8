package factory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

var (
	// ErrUnknownType is returned by Create for a type nothing registered.
	ErrUnknownType = errors.New("unknown module type")
	// ErrDuplicateType is returned by Register when the type is taken.
	ErrDuplicateType = errors.New("module type already registered")
)

// ModuleConfig is one configured component: its type name and the settings
// handed to that type's factory.
type ModuleConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Factory builds a T from decoded-on-demand settings.
type Factory[T any] func(conf map[string]any) (T, error)

// Registry maps type names to factories. It is safe for concurrent use.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds f under name.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	k := key(name)
	switch {
	case k == "":
		return errors.New("module type name is blank")
	case f == nil:
		return fmt.Errorf("nil factory for module type %q", k)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[k]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateType, k)
	}
	r.factories[k] = f
	return nil
}

// MustRegister is Register for package init functions. It panics on error.
func (r *Registry[T]) MustRegister(name string, f Factory[T]) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Names returns the registered type names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create runs the factory registered for cfg.Type. Factory errors are
// prefixed with the type name.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	var zero T
	k := key(cfg.Type)
	r.mu.RLock()
	f, ok := r.factories[k]
	r.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("%w %q (known: %s)", ErrUnknownType, cfg.Type, strings.Join(r.Names(), ", "))
	}
	v, err := f(cfg.Conf)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", k, err)
	}
	return v, nil
}

// Decode fills out from the settings using json tags. Strings are converted
// to the field type so values overridden from the environment decode like
// the ones read from a file. Keys out does not declare are rejected.
func Decode(conf map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(conf)
}

// NoSettings rejects any setting, for components that take none.
func NoSettings(conf map[string]any) error {
	return Decode(conf, &struct{}{})
}
