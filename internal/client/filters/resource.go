// Package filters decides which preference resources and setting keys take
// part in synchronization. Resource rules live in a small YAML file, key
// patterns come from the user settings, and path excludes use gitignore
// syntax.
package filters

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Resource identifies one syncable preference category.
type Resource string

const (
	ResourceSettings    Resource = "settings"
	ResourceKeybindings Resource = "keybindings"
	ResourceSnippets    Resource = "snippets"
	ResourceTasks       Resource = "tasks"
	ResourceExtensions  Resource = "extensions"
	ResourceState       Resource = "state"
)

// AllResources returns every known resource in a stable order.
func AllResources() []Resource {
	return []Resource{
		ResourceSettings,
		ResourceKeybindings,
		ResourceSnippets,
		ResourceTasks,
		ResourceExtensions,
		ResourceState,
	}
}

func (r Resource) String() string {
	return string(r)
}

// ParseResource converts a raw string into a Resource.
func ParseResource(raw string) (Resource, error) {
	switch Resource(strings.ToLower(strings.TrimSpace(raw))) {
	case ResourceSettings:
		return ResourceSettings, nil
	case ResourceKeybindings:
		return ResourceKeybindings, nil
	case ResourceSnippets:
		return ResourceSnippets, nil
	case ResourceTasks:
		return ResourceTasks, nil
	case ResourceExtensions:
		return ResourceExtensions, nil
	case ResourceState, Resource("globalstate"):
		return ResourceState, nil
	default:
		return "", fmt.Errorf("invalid resource %q", raw)
	}
}

func (r *Resource) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return fmt.Errorf("resource cannot be empty")
	}
	resource, err := ParseResource(value.Value)
	if err != nil {
		return err
	}
	*r = resource
	return nil
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	resource, err := ParseResource(raw)
	if err != nil {
		return err
	}
	*r = resource
	return nil
}
