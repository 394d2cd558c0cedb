package bmp

// Test-only helpers for assembling minimal, valid BMP byte streams without
// depending on binary fixture files on disk.

func putU16(b []byte, off int, v uint16) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}

func putU32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func putI32(b []byte, off int, v int32) {
	putU32(b, off, uint32(v))
}

// buildInfoHeaderBMP assembles a BMP with a 40-byte BITMAPINFOHEADER (or,
// when masks != nil, a 56-byte BITMAPV3INFOHEADER carrying the masks inline
// so the DIB header dispatch exercises the V3 path too).
func buildInfoHeaderBMP(width, height int32, bpp uint16, compression uint32, palette, pixelData []byte, masks *ChannelMasks) []byte {
	dibSize := uint32(40)
	if masks != nil {
		dibSize = 56
	}
	return buildInfoHeaderBMPWithDibSize(width, height, bpp, compression, palette, pixelData, masks, dibSize)
}

// buildInfoHeaderBMPWithDibSize is like buildInfoHeaderBMP but lets the
// caller force a specific DIB header size (e.g. 108 for BITMAPV4HEADER),
// to exercise headers whose mask fields exist structurally but go unused.
func buildInfoHeaderBMPWithDibSize(width, height int32, bpp uint16, compression uint32, palette, pixelData []byte, masks *ChannelMasks, dibSize uint32) []byte {
	headerLen := fileHeaderLen + int(dibSize)
	imageDataStart := headerLen + len(palette)
	fileSize := imageDataStart + len(pixelData)

	buf := make([]byte, fileSize)

	buf[0], buf[1] = 0x42, 0x4D
	putU32(buf, 2, uint32(fileSize))
	putU32(buf, 10, uint32(imageDataStart))

	putU32(buf, fileHeaderLen, dibSize)
	putI32(buf, fileHeaderLen+4, width)
	putI32(buf, fileHeaderLen+8, height)
	putU16(buf, fileHeaderLen+12, 1) // planes
	putU16(buf, fileHeaderLen+14, bpp)
	putU32(buf, fileHeaderLen+16, compression)
	putU32(buf, fileHeaderLen+20, uint32(len(pixelData)))
	if masks != nil {
		putU32(buf, fileHeaderLen+40, masks.Red)
		putU32(buf, fileHeaderLen+44, masks.Green)
		putU32(buf, fileHeaderLen+48, masks.Blue)
		putU32(buf, fileHeaderLen+52, masks.Alpha)
	}

	copy(buf[headerLen:], palette)
	copy(buf[imageDataStart:], pixelData)

	return buf
}

// buildCoreHeaderBMP assembles a BMP with a 12-byte BITMAPCOREHEADER.
func buildCoreHeaderBMP(width, height int16, bpp uint16, palette, pixelData []byte) []byte {
	const dibSize = 12
	headerLen := fileHeaderLen + dibSize
	imageDataStart := headerLen + len(palette)
	fileSize := imageDataStart + len(pixelData)

	buf := make([]byte, fileSize)

	buf[0], buf[1] = 0x42, 0x4D
	putU32(buf, 2, uint32(fileSize))
	putU32(buf, 10, uint32(imageDataStart))

	putU32(buf, fileHeaderLen, dibSize)
	putU16(buf, fileHeaderLen+4, uint16(width))
	putU16(buf, fileHeaderLen+6, uint16(height))
	putU16(buf, fileHeaderLen+8, 1) // planes
	putU16(buf, fileHeaderLen+10, bpp)

	copy(buf[headerLen:], palette)
	copy(buf[imageDataStart:], pixelData)

	return buf
}

// bgrEntry appends one BGR[A] palette entry.
func bgrEntry(b, g, r byte, infoStyle bool) []byte {
	if infoStyle {
		return []byte{b, g, r, 0}
	}
	return []byte{b, g, r}
}
