package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseIPv4 parses a dotted-quad IPv4 address into its four octets.
func ParseIPv4(s string) ([4]byte, error) {
	var out [4]byte
	ip := net.ParseIP(s)
	if ip == nil {
		return out, fmt.Errorf("invalid IPv4 address: %s", s)
	}
	v4 := ip.To4()
	if v4 == nil {
		return out, fmt.Errorf("not an IPv4 address: %s", s)
	}
	copy(out[:], v4)
	return out, nil
}

// FormatIPv4 formats four octets as a dotted-quad string.
func FormatIPv4(a [4]byte) string {
	return net.IP(a[:]).String()
}

// SplitIPMask splits a CIDR notation into IP and mask length.
// Returns the IP (without mask) and mask length; mask length 0 if absent.
func SplitIPMask(cidr string) (string, int) {
	parts := strings.Split(cidr, "/")
	if len(parts) != 2 {
		return cidr, 0
	}
	maskLen, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], 0
	}
	return parts[0], maskLen
}

// MaskIPv4 clears the host bits of an IPv4 address for the given mask length.
func MaskIPv4(a [4]byte, maskLen int) [4]byte {
	mask := net.CIDRMask(maskLen, 32)
	masked := net.IP(a[:]).Mask(mask)
	var out [4]byte
	copy(out[:], masked.To4())
	return out
}

// SubnetAddrs enumerates every address of an IPv4 CIDR block, including the
// network and broadcast addresses. Used to map a router's loopback network
// onto the router itself.
func SubnetAddrs(cidr string) ([][4]byte, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	v4 := ipNet.IP.To4()
	if v4 == nil {
		return nil, fmt.Errorf("not an IPv4 network: %s", cidr)
	}
	ones, bits := ipNet.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("not an IPv4 network: %s", cidr)
	}
	count := 1 << (32 - ones)

	base := uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
	out := make([][4]byte, 0, count)
	for i := 0; i < count; i++ {
		n := base + uint32(i)
		out = append(out, [4]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	}
	return out, nil
}
