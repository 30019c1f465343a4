package prompt

import (
	"context"
	"fmt"
	"strings"
)

// Compose joins base with every fragment in store, in key order, separated
// by blank lines. Empty fragments are skipped. A nil store yields base.
func Compose(ctx context.Context, base string, store Store) (string, error) {
	if store == nil {
		return base, nil
	}

	keys, err := store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list prompt fragments: %w", err)
	}
	if len(keys) == 0 {
		return base, nil
	}

	fragments, err := store.Load(ctx, keys...)
	if err != nil {
		return "", fmt.Errorf("failed to load prompt fragments: %w", err)
	}

	parts := make([]string, 0, len(fragments)+1)
	if base = strings.TrimSpace(base); base != "" {
		parts = append(parts, base)
	}
	for _, f := range fragments {
		if text := strings.TrimSpace(f.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
