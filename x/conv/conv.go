// Package conv appends decimal and hex digits without fmt or strconv, so log
// lines can be built on MCU targets without pulling in the formatter.
package conv

// AppendUint appends the base-10 digits of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 digits of n to dst, with a leading '-' when negative.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// Negate through uint64 so MinInt64 does not overflow.
		return AppendUint(dst, uint64(^n)+1)
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex8 appends b as two uppercase hex digits with a 0x prefix.
func AppendHex8(dst []byte, b uint8) []byte {
	const hexd = "0123456789ABCDEF"
	return append(dst, '0', 'x', hexd[b>>4], hexd[b&0xF])
}
