package core

// appendUint appends the decimal form of n to buf without using fmt.
// The status path runs in the firmware loop, where fmt is too heavy.
func appendUint(buf []byte, n uint32) []byte {
	if n == 0 {
		return append(buf, '0')
	}

	var tmp [10]byte
	pos := len(tmp)
	for n > 0 {
		pos--
		tmp[pos] = byte('0' + n%10)
		n /= 10
	}
	return append(buf, tmp[pos:]...)
}

// appendPadded appends n right-aligned in a field of width characters
func appendPadded(buf []byte, n uint32, width int) []byte {
	digits := 1
	for v := n; v >= 10; v /= 10 {
		digits++
	}
	for ; digits < width; digits++ {
		buf = append(buf, ' ')
	}
	return appendUint(buf, n)
}

// itoa converts an integer to a string
func itoa(n int) string {
	if n < 0 {
		return "-" + string(appendUint(nil, uint32(-n)))
	}
	return string(appendUint(nil, uint32(n)))
}
