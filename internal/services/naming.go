package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// whitespaceRun matches runs of any Unicode space, line or paragraph
// separator, plus the BOM.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// pathUnsafe matches separators, control characters and the runes Windows
// refuses in file names.
var pathUnsafe = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f\x7f]`)

// StorageName derives the name an attached image is stored under:
//
//	<client name, whitespace runs replaced by "_">_<unix millis>.<ext>
//
// ext is the text after the last "." of originalName, or the whole name when
// it has no dot. The client name is NFC-normalized first. Path-unsafe runes in
// either part become "_" and leading dots are dropped, so the result is always
// a single path element.
func StorageName(clientName, originalName string, at time.Time) string {
	base := whitespaceRun.ReplaceAllString(norm.NFC.String(clientName), "_")
	base = strings.TrimLeft(pathUnsafe.ReplaceAllString(base, "_"), ".")
	ext := originalName
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		ext = originalName[i+1:]
	}
	ext = pathUnsafe.ReplaceAllString(ext, "_")
	return fmt.Sprintf("%s_%d.%s", base, at.UnixMilli(), ext)
}
