package rename

import "strings"

const invalidFilenameChars = "<>:\"/\\|?*"

// sanitizeAffix strips characters that cannot appear in file names from a
// user-supplied prefix or suffix. Runs of stripped characters collapse to a
// single space. Spaces the user typed are kept; separator spaces like
// "IMG " are intentional.
func sanitizeAffix(affix string) string {
	if affix == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(affix))

	lastStripped := false
	for _, r := range affix {
		if r < 32 || r == 127 || strings.ContainsRune(invalidFilenameChars, r) {
			if !lastStripped {
				b.WriteRune(' ')
				lastStripped = true
			}
			continue
		}
		lastStripped = false
		b.WriteRune(r)
	}

	return b.String()
}
