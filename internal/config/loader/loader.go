// Package loader reads raw configuration maps from TOML files and the
// environment. Maps from several sources are combined with DeepMerge
// before being decoded into typed settings.
package loader

// Loader is the interface for configuration sources.
type Loader interface {
	// Load reads the source and returns a map. Returns nil, nil if the
	// source doesn't exist.
	Load() (map[string]any, error)
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}
