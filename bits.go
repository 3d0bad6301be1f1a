package camzip

// PackBits packs bits, one per byte, most significant bit first.
// A partial final byte is padded with zeros.
func PackBits(bits []byte) []byte {
	packed := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			packed[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return packed
}

// UnpackBits expands packed into one bit per byte, most significant bit first.
// The padding of the final byte is returned as well.
func UnpackBits(packed []byte) []byte {
	bits := make([]byte, 0, 8*len(packed))
	for _, bt := range packed {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (bt>>uint(i))&1)
		}
	}
	return bits
}
