package main

import (
	"path/filepath"
	"strings"
)

// parseLoads parses "name=filename,..." into a map.  A missing name
// defaults to the filename's base without its extension.
func parseLoads(s string) map[string]string {
	acc := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, filename := "", part
		if i := strings.Index(part, "="); 0 <= i {
			name, filename = part[:i], part[i+1:]
		}
		if name == "" {
			base := filepath.Base(filename)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		acc[name] = filename
	}
	return acc
}
