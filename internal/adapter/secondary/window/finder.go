package window

import (
	"context"
	"fmt"

	"admute/internal/domain"
)

// Enumerator lists the titles of open top-level windows.
type Enumerator interface {
	Windows(ctx context.Context) ([]domain.Window, error)
}

// Finder implements domain.WindowQuery on top of an Enumerator.
// Any window may match; ownership by the target process is not checked.
type Finder struct {
	enum Enumerator
}

// NewFinder creates a window query over enum.
func NewFinder(enum Enumerator) *Finder {
	return &Finder{enum: enum}
}

// FindMatchingTitle returns the first window whose title matches pattern.
func (f *Finder) FindMatchingTitle(ctx context.Context, pattern domain.Pattern) (domain.Window, bool, error) {
	wins, err := f.enum.Windows(ctx)
	if err != nil {
		return domain.Window{}, false, fmt.Errorf("enumerate windows: %w", err)
	}
	for _, w := range wins {
		if w.Title == "" {
			continue
		}
		if pattern.Match(w.Title) {
			return w, true, nil
		}
	}
	return domain.Window{}, false, nil
}
