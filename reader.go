package bmp

// byteReader is a cursor over a borrowed slice offering bounds-checked,
// little-endian integer reads. It never copies or mutates the underlying
// bytes.
type byteReader struct {
	data []byte
}

func newByteReader(data []byte) byteReader {
	return byteReader{data: data}
}

func (r byteReader) readU8(offset uint32) (uint8, error) {
	if uint64(offset)+1 > uint64(len(r.data)) {
		return 0, newParseError(ErrTruncated)
	}
	return r.data[offset], nil
}

func (r byteReader) readU16(offset uint32) (uint16, error) {
	if uint64(offset)+2 > uint64(len(r.data)) {
		return 0, newParseError(ErrTruncated)
	}
	b := r.data[offset : offset+2]
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (r byteReader) readU32(offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(len(r.data)) {
		return 0, newParseError(ErrTruncated)
	}
	b := r.data[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (r byteReader) readI16(offset uint32) (int16, error) {
	v, err := r.readU16(offset)
	return int16(v), err
}

func (r byteReader) readI32(offset uint32) (int32, error) {
	v, err := r.readU32(offset)
	return int32(v), err
}

// slice returns data[start:end], failing with ErrTruncated rather than
// panicking if the window doesn't fit.
func (r byteReader) slice(start, end uint32) ([]byte, error) {
	if start > end || uint64(end) > uint64(len(r.data)) {
		return nil, newParseError(ErrTruncated)
	}
	return r.data[start:end], nil
}
