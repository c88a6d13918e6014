package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
)

// ValidateRegistry checks that every name the registry refers to exists:
// parent classes, proxied classes and type map targets. Parent chains must
// not loop.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var result *multierror.Error
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.ClassNames() {
		c := r.classes[name]
		if c.Parent == "" {
			continue
		}
		if _, ok := r.classes[c.Parent]; !ok {
			result = multierror.Append(result, fmt.Errorf("class '%s': parent class '%s' is not registered", name, c.Parent))
			continue
		}
		seen := map[string]bool{name: true}
		for p := c.Parent; p != ""; p = r.classes[p].Parent {
			if seen[p] {
				result = multierror.Append(result, fmt.Errorf("class '%s': parent chain loops through '%s'", name, p))
				break
			}
			seen[p] = true
			if _, ok := r.classes[p]; !ok {
				break
			}
		}
	}

	for _, class := range sortedKeys(r.proxies) {
		if _, ok := r.classes[class]; !ok {
			logger.Warn("Proxy registered for a class that is not registered; it can only apply to subclasses.", "class", class)
		}
	}

	for _, typeName := range sortedKeys(r.types) {
		class := r.types[typeName]
		if _, ok := r.classes[class]; !ok {
			result = multierror.Append(result, fmt.Errorf("type name '%s' refers to unregistered class '%s'", typeName, class))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
