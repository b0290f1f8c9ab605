package domain

import (
	"reflect"
	"sort"
)

// ChangedSlots returns the sorted names of slots that differ between two slot maps.
// A slot present on only one side counts as changed.
func ChangedSlots(before, after map[string]any) []string {
	var changed []string
	for name, v := range after {
		old, ok := before[name]
		if !ok || !reflect.DeepEqual(old, v) {
			changed = append(changed, name)
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}
