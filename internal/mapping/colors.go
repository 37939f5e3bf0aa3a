package mapping

import (
	"fmt"
	"strings"
)

// Colors is the palette accepted for projects and labels.
var Colors = []string{
	"berry_red", "red", "orange", "yellow", "olive_green", "lime_green",
	"green", "mint_green", "teal", "sky_blue", "light_blue", "blue",
	"grape", "violet", "lavender", "magenta", "salmon", "charcoal",
	"grey", "taupe",
}

var colorSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Colors))
	for _, c := range Colors {
		m[c] = struct{}{}
	}
	return m
}()

// NormalizeColor validates a color supplied by a client. Display names
// ("Berry Red") and hyphenated forms are accepted. Colors coming back
// from the API are never normalized; MapProject keeps them verbatim.
func NormalizeColor(s string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if _, ok := colorSet[key]; !ok {
		return "", fmt.Errorf("invalid color %q, must be one of: %s", s, strings.Join(Colors, ", "))
	}
	return key, nil
}
