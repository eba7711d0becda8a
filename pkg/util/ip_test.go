package util

import (
	"testing"
)

func TestParseIPv4(t *testing.T) {
	got, err := ParseIPv4("192.168.1.10")
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}
	if got != [4]byte{192, 168, 1, 10} {
		t.Errorf("ParseIPv4 = %v", got)
	}
}

func TestParseIPv4_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-an-ip", "1.2.3", "::1", "256.1.1.1"} {
		if _, err := ParseIPv4(s); err == nil {
			t.Errorf("ParseIPv4(%q): expected error", s)
		}
	}
}

func TestFormatIPv4_RoundTrip(t *testing.T) {
	a := [4]byte{100, 0, 1, 0}
	got, err := ParseIPv4(FormatIPv4(a))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if got != a {
		t.Errorf("round trip = %v, want %v", got, a)
	}
}

func TestSplitIPMask(t *testing.T) {
	tests := []struct {
		in   string
		ip   string
		mask int
	}{
		{"100.0.1.0/24", "100.0.1.0", 24},
		{"10.0.0.1", "10.0.0.1", 0},
		{"10.0.0.1/x", "10.0.0.1", 0},
	}
	for _, tt := range tests {
		ip, mask := SplitIPMask(tt.in)
		if ip != tt.ip || mask != tt.mask {
			t.Errorf("SplitIPMask(%q) = (%q, %d), want (%q, %d)", tt.in, ip, mask, tt.ip, tt.mask)
		}
	}
}

func TestMaskIPv4(t *testing.T) {
	got := MaskIPv4([4]byte{100, 0, 1, 42}, 24)
	if got != [4]byte{100, 0, 1, 0} {
		t.Errorf("MaskIPv4 = %v", got)
	}
}

func TestSubnetAddrs(t *testing.T) {
	addrs, err := SubnetAddrs("10.0.1.0/30")
	if err != nil {
		t.Fatalf("SubnetAddrs: %v", err)
	}
	want := [][4]byte{
		{10, 0, 1, 0}, {10, 0, 1, 1}, {10, 0, 1, 2}, {10, 0, 1, 3},
	}
	if len(addrs) != len(want) {
		t.Fatalf("SubnetAddrs returned %d addresses, want %d", len(addrs), len(want))
	}
	for i, a := range addrs {
		if a != want[i] {
			t.Errorf("addrs[%d] = %v, want %v", i, a, want[i])
		}
	}
}

func TestSubnetAddrs_HostBitsCleared(t *testing.T) {
	// net.ParseCIDR already clears host bits; all 4 members must come back
	addrs, err := SubnetAddrs("10.0.1.2/30")
	if err != nil {
		t.Fatalf("SubnetAddrs: %v", err)
	}
	if len(addrs) != 4 || addrs[0] != [4]byte{10, 0, 1, 0} {
		t.Errorf("SubnetAddrs = %v", addrs)
	}
}

func TestSubnetAddrs_Invalid(t *testing.T) {
	if _, err := SubnetAddrs("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
	if _, err := SubnetAddrs("2001:db8::/64"); err == nil {
		t.Error("expected error for IPv6 network")
	}
}
