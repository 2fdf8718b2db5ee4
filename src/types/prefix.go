package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"
)

const MaxBits = 32

// Prefix is an IPv4 CIDR block. Addr never has bits set beyond Bits.
type Prefix struct {
	Addr uint32
	Bits uint8
}

func NewPrefix(addr uint32, bits uint8) Prefix {
	if bits > MaxBits {
		bits = MaxBits
	}

	return Prefix{Addr: addr & Mask(bits), Bits: bits}
}

func PrefixFromNetip(p netip.Prefix) (Prefix, bool) {
	if !p.IsValid() || !p.Addr().Is4() {
		return Prefix{}, false
	}
	a4 := p.Addr().As4()

	return NewPrefix(binary.BigEndian.Uint32(a4[:]), uint8(p.Bits())), true
}

func MustParsePrefix(s string) Prefix {
	p, ok := PrefixFromNetip(netip.MustParsePrefix(s))
	if !ok {
		panic(fmt.Sprintf("not an ipv4 prefix: %s", s))
	}

	return p
}

func Mask(bits uint8) uint32 {
	if bits == 0 {
		return 0
	}

	return uint32(math.MaxUint32) << (MaxBits - bits)
}

func (p Prefix) First() uint32 {
	return p.Addr
}

func (p Prefix) Last() uint32 {
	return p.Addr | ^Mask(p.Bits)
}

func (p Prefix) Range() Range {
	return Range{First: p.First(), Last: p.Last()}
}

func (p Prefix) Size() uint64 {
	return 1 << (MaxBits - uint64(p.Bits))
}

// Covers reports whether every address of o lies within p.
func (p Prefix) Covers(o Prefix) bool {
	return p.Bits <= o.Bits && o.Addr&Mask(p.Bits) == p.Addr
}

func (p Prefix) Netip() netip.Prefix {
	return netip.PrefixFrom(AddrToNetip(p.Addr), int(p.Bits))
}

func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", AddrString(p.Addr), p.Bits)
}

// HostString renders host routes without the /32 suffix.
func (p Prefix) HostString() string {
	if p.Bits == MaxBits {
		return AddrString(p.Addr)
	}

	return p.String()
}

func (p Prefix) Compare(o Prefix) int {
	switch {
	case p.Addr < o.Addr:
		return -1
	case p.Addr > o.Addr:
		return 1
	case p.Bits < o.Bits:
		return -1
	case p.Bits > o.Bits:
		return 1
	}

	return 0
}

func AddrToNetip(addr uint32) netip.Addr {
	var a4 [4]byte
	binary.BigEndian.PutUint32(a4[:], addr)

	return netip.AddrFrom4(a4)
}

func AddrString(addr uint32) string {
	return AddrToNetip(addr).String()
}
