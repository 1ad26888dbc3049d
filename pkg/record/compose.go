package record

import (
	"strconv"
	"strings"
)

// Compose renders pattern by substituting single-letter placeholders with
// record fields. Any other character is copied as is.
//
//	M  version.major     S  status.stage     n  build.number
//	m  version.minor     s  status.number    t  build.total
//	p  version.patch     c  commit           d  build.date
func Compose(r *Record, pattern string) string {
	var b strings.Builder
	for _, ch := range pattern {
		switch ch {
		case 'M':
			b.WriteString(strconv.Itoa(r.Version.Major))
		case 'm':
			b.WriteString(strconv.Itoa(r.Version.Minor))
		case 'p':
			b.WriteString(strconv.Itoa(r.Version.Patch))
		case 'S':
			b.WriteString(r.Status.Stage)
		case 's':
			b.WriteString(strconv.Itoa(r.Status.Number))
		case 'n':
			b.WriteString(strconv.Itoa(r.Build.Number))
		case 't':
			b.WriteString(strconv.Itoa(r.Build.Total))
		case 'd':
			b.WriteString(r.Build.Date)
		case 'c':
			b.WriteString(r.CommitString())
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
