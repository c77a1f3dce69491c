package download

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"strings"
)

const invalidFilenameChars = `<>:"/\|?*`

// FilenameForURL derives a local filename from the URL path. URLs without a
// usable basename get a stable generated name derived from the full URL, so
// repeated runs resolve to the same file.
func FilenameForURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return hashedName(rawURL)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || !strings.Contains(name, ".") {
		return hashedName(rawURL)
	}
	return name
}

// TargetName returns the filename an item downloads to. A name hint from
// the source row replaces the URL basename but keeps its extension.
func TargetName(item Item) string {
	name := FilenameForURL(item.URL)
	if item.NameHint == "" {
		return name
	}

	base := sanitizeBase(item.NameHint)
	if base == "" {
		return name
	}
	return base + path.Ext(name)
}

func hashedName(rawURL string) string {
	h := fnv.New32a()
	h.Write([]byte(rawURL))
	return fmt.Sprintf("downloaded_file_%08x", h.Sum32())
}

// sanitizeBase strips characters that cannot appear in filenames from a
// user-supplied name. Trailing dots are removed so the URL extension
// attaches cleanly.
func sanitizeBase(base string) string {
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if r < 32 || r == 127 || strings.ContainsRune(invalidFilenameChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(strings.TrimSpace(b.String()), ".")
}
