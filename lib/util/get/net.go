package get

import (
	"net/netip"
	"strings"
)

// NetPrefix parses "a.b.c.d" or "a.b.c.d/n" as an IPv4 prefix with host bits cleared.
func NetPrefix(str string) (netip.Prefix, bool) {
	if str == "" {
		return netip.Prefix{}, false
	}

	if strings.IndexByte(str, '/') >= 0 {
		prefix, err := netip.ParsePrefix(str)
		if err != nil || !prefix.Addr().Is4() {
			return netip.Prefix{}, false
		}

		return prefix.Masked(), true
	}

	if ip, err := netip.ParseAddr(str); err == nil && ip.Is4() {
		return netip.PrefixFrom(ip, 32), true
	}

	return netip.Prefix{}, false
}

// LeadingToken returns the leading run of characters that may form an IPv4 prefix.
func LeadingToken(line string) string {
	end := 0
	for end < len(line) {
		c := line[end]
		if (c < '0' || c > '9') && c != '.' && c != '/' {
			break
		}
		end++
	}

	return line[:end]
}
