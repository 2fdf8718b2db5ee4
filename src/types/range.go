package types

// Range is the closed interval [First, Last] of the IPv4 address space.
type Range struct {
	First uint32
	Last  uint32
}
