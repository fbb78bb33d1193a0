// Package privacy keeps visitor network identifiers out of logs.
package privacy

import "net/netip"

// AnonymizeIP masks the host portion of an address before it is logged:
// IPv4 keeps the /24 network, IPv6 keeps the /48 prefix.
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
