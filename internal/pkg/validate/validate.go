package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email is a deliberately loose check: the address is only used for
// owner-linkage matching, never for delivery.
func Email(value string) bool {
	v := strings.TrimSpace(value)
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 {
		return false
	}
	domain := v[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(v, " \t")
}
