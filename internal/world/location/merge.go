package location

// DeepMerge overlays overlay onto base, returning a fresh map.
//
// Nested maps merge recursively with overlay winning on conflicting keys.
// Every other value kind, slices included, is replaced wholesale. Neither
// input is mutated.
func DeepMerge(base, overlay map[string]any) map[string]any {
	merged := cloneValueMap(base)
	if merged == nil {
		merged = map[string]any{}
	}
	for key, overlayValue := range overlay {
		baseValue, exists := merged[key]
		if exists {
			baseMap, baseIsMap := baseValue.(map[string]any)
			overlayMap, overlayIsMap := overlayValue.(map[string]any)
			if baseIsMap && overlayIsMap {
				merged[key] = DeepMerge(baseMap, overlayMap)
				continue
			}
		}
		merged[key] = cloneValue(overlayValue)
	}
	return merged
}

func cloneValueMap(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	cloned := make(map[string]any, len(values))
	for key, value := range values {
		cloned[key] = cloneValue(value)
	}
	return cloned
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneValueMap(typed)
	case []any:
		cloned := make([]any, len(typed))
		for i, element := range typed {
			cloned[i] = cloneValue(element)
		}
		return cloned
	default:
		return value
	}
}

func cloneStringMap(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}
