// Package madhab models the four canonical Sunni schools of jurisprudence as a
// fixed enumeration and provides normalization from the spelling variants and
// Arabic forms that appear in user input and scraped metadata.
package madhab

import "strings"

// Key is a canonical lowercase school identifier.
type Key string

const (
	Maliki  Key = "maliki"
	Hanafi  Key = "hanafi"
	Shafii  Key = "shafii"
	Hanbali Key = "hanbali"
)

// Keys returns the four canonical keys in fixed order.
func Keys() []Key {
	return []Key{Maliki, Hanafi, Shafii, Hanbali}
}

// aliases maps every accepted representation to its canonical key. Arabic forms
// are listed with and without the definite article.
var aliases = map[string]Key{
	"maliki":   Maliki,
	"maliky":   Maliki,
	"malik":    Maliki,
	"مالكي":    Maliki,
	"المالكي":  Maliki,
	"المالكية": Maliki,

	"hanafi":  Hanafi,
	"hanafy":  Hanafi,
	"حنفي":    Hanafi,
	"الحنفي":  Hanafi,
	"الحنفية": Hanafi,

	"shafii":   Shafii,
	"shafi":    Shafii,
	"shafi'i":  Shafii,
	"shafei":   Shafii,
	"shafe'i":  Shafii,
	"شافعي":    Shafii,
	"الشافعي":  Shafii,
	"الشافعية": Shafii,

	"hanbali":  Hanbali,
	"hanbaly":  Hanbali,
	"حنبلي":    Hanbali,
	"الحنبلي":  Hanbali,
	"الحنابلة": Hanbali,
}

// Normalize maps a raw school name to its canonical key. The second return is
// false for anything unrecognized; callers must treat that as a rejection, not
// a default.
func Normalize(raw string) (Key, bool) {
	n := strings.ToLower(strings.TrimSpace(raw))
	if n == "" {
		return "", false
	}
	key, ok := aliases[n]
	return key, ok
}

// NormalizeAll normalizes a list, silently dropping unrecognized entries and
// de-duplicating. The returned slice preserves canonical order.
func NormalizeAll(raw []string) []Key {
	seen := make(map[Key]bool, len(raw))
	for _, r := range raw {
		if key, ok := Normalize(r); ok {
			seen[key] = true
		}
	}
	out := make([]Key, 0, len(seen))
	for _, key := range Keys() {
		if seen[key] {
			out = append(out, key)
		}
	}
	return out
}

// CollectionFor maps a canonical key to its vector-store collection name.
func CollectionFor(key Key) string {
	return string(key) + "_fiqh"
}

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// Valid reports whether k is one of the four canonical keys.
func (k Key) Valid() bool {
	switch k {
	case Maliki, Hanafi, Shafii, Hanbali:
		return true
	}
	return false
}
