// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &c, c.Validate()
}

// Validate rejects empty and duplicate task types.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Components))
	for i, comp := range c.Components {
		if comp.TaskType == "" {
			return fmt.Errorf("component %d has no taskType", i)
		}
		if seen[comp.TaskType] {
			return fmt.Errorf("duplicate taskType %q", comp.TaskType)
		}
		seen[comp.TaskType] = true
	}
	return nil
}

func (c *Catalog) Find(taskType string) (Component, bool) {
	for _, comp := range c.Components {
		if comp.TaskType == taskType {
			return comp, true
		}
	}
	return Component{}, false
}

// ByCategory groups components; each group keeps catalog order.
func (c *Catalog) ByCategory() map[string][]Component {
	out := make(map[string][]Component)
	for _, comp := range c.Components {
		out[comp.Category] = append(out[comp.Category], comp)
	}
	return out
}

// Categories returns the category names sorted.
func (c *Catalog) Categories() []string {
	groups := c.ByCategory()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
