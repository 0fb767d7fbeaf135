package lint

import (
	"sort"
	"sync"
)

// globalRegistry is the single global registry for rule discovery.
var globalRegistry = &Registry{
	rules: make(map[string]Rule),
}

// Registry stores registered rules for discovery. It backs the rules
// command, configuration validation, and the HTTP catalogue; Linter
// instances are independent of it.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule // keyed by name
}

// Register adds a rule to the global registry. Call this from init()
// functions in rule packages. Registering a name twice overwrites.
func Register(rule Rule) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.Name()] = rule
}

// GetAll returns all registered rules sorted by name.
func GetAll() []Rule {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]Rule, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Name() < rules[j].Name()
	})
	return rules
}

// GetByName returns a rule by its name.
func GetByName(name string) (Rule, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[name]
	return rule, ok
}

// GetByKind returns all registered rules validating the given entity kind,
// sorted by name.
func GetByKind(kind Kind) []Rule {
	var rules []Rule
	for _, rule := range GetAll() {
		for _, k := range KindsOf(rule) {
			if k == kind {
				rules = append(rules, rule)
				break
			}
		}
	}
	return rules
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]Rule)
}
