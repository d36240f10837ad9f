package settings

// CRCPolynomial is the CRC-16-CCITT polynomial.
const CRCPolynomial = 0x1021

// UpdateCRC feeds data into a running CRC-16-CCITT.
func UpdateCRC(crc uint16, data ...byte) uint16 {
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ CRCPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC computes the CRC-16-CCITT of data starting from 0.
func CRC(data []byte) uint16 {
	return UpdateCRC(0, data...)
}
