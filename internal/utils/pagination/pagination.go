package pagination

import "strconv"

// Default values.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Limit clamps a requested page size to [1, maxSize].
// Non-positive requests select defaultSize.
func Limit(requested, defaultSize, maxSize int) int {
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}
	if maxSize < 1 {
		maxSize = MaxPageSize
	}
	if requested < 1 {
		requested = defaultSize
	}
	if requested > maxSize {
		return maxSize
	}
	return requested
}

// ParseLimit parses a limit query value. Missing or malformed values yield 0,
// which Limit turns into the default.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
