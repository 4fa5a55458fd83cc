package live

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"captioner/internal/language"
)

// Registry maps languages to recognizer factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[language.Language]RecognizerFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[language.Language]RecognizerFactory)}
}

// Register installs factory for lang, replacing any previous one.
func (r *Registry) Register(lang language.Language, factory RecognizerFactory) error {
	if !lang.Valid() {
		return fmt.Errorf("register recognizer: unsupported language %q", lang)
	}
	if factory == nil {
		return fmt.Errorf("register recognizer: nil factory for %s", lang)
	}
	r.mu.Lock()
	r.factories[lang] = factory
	r.mu.Unlock()
	return nil
}

// NewRecognizer builds a recognizer for lang.
func (r *Registry) NewRecognizer(ctx context.Context, lang language.Language, sampleRate int) (Recognizer, error) {
	r.mu.RLock()
	factory, ok := r.factories[lang]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRecognizer, lang)
	}
	return factory.NewRecognizer(ctx, sampleRate)
}

// Languages lists registered languages in sorted order.
func (r *Registry) Languages() []language.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]language.Language, 0, len(r.factories))
	for lang := range r.factories {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}
