package seq

import "strings"

// NamesMatch reports whether two reads have names identifying the same
// fragment. Only the first whitespace-delimited token of each name is
// compared. A trailing '1' or '2' is stripped from both tokens when both end
// in one of those two bytes: some pipelines name mates "frag/1" and
// "frag/2", and fastq-dump with -I appends ".1" and ".2".
func NamesMatch(r1, r2 Read) bool {
	n1 := firstField(r1.Name)
	n2 := firstField(r2.Name)
	if hasMateSuffix(n1) && hasMateSuffix(n2) {
		n1 = n1[:len(n1)-1]
		n2 = n2[:len(n2)-1]
	}
	return n1 == n2
}

func firstField(name string) string {
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		return name[:i]
	}
	return name
}

func hasMateSuffix(name string) bool {
	if len(name) == 0 {
		return false
	}
	c := name[len(name)-1]
	return c == '1' || c == '2'
}
