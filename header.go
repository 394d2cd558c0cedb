package bmp

// Bpp is the number of bits used to store one pixel. Only the depths named
// below are supported; any other value is rejected at parse time.
type Bpp uint16

const (
	Bpp1  Bpp = 1
	Bpp4  Bpp = 4
	Bpp8  Bpp = 8
	Bpp16 Bpp = 16
	Bpp24 Bpp = 24
	Bpp32 Bpp = 32
)

func (b Bpp) valid() bool {
	switch b {
	case Bpp1, Bpp4, Bpp8, Bpp16, Bpp24, Bpp32:
		return true
	}
	return false
}

// RowOrder describes whether the first row stored in the file is the top or
// the bottom row of the image.
type RowOrder int

const (
	// BottomUp is the standard BMP orientation: the first row in the file
	// is the bottom row of the image.
	BottomUp RowOrder = iota
	// TopDown is signalled by a negative declared height.
	TopDown
)

// CompressionMethod is one of the three compression codes this core
// understands. Anything else is rejected during parsing.
type CompressionMethod uint32

const (
	CompressionRGB            CompressionMethod = 0
	CompressionBitfields      CompressionMethod = 3
	CompressionAlphaBitfields CompressionMethod = 6
)

// ChannelMasks locates the R/G/B/(A) bit-fields within a 16- or 32-bit
// pixel under BI_BITFIELDS / BI_ALPHABITFIELDS compression, or within any
// BITMAPV4HEADER / BITMAPV5HEADER pixel.
type ChannelMasks struct {
	Red, Green, Blue, Alpha uint32
}

// RGB555Masks are the canonical masks for an unmasked 16 bpp BMP.
var RGB555Masks = ChannelMasks{Red: 0x7C00, Green: 0x03E0, Blue: 0x001F}

// RGB565Masks are the masks used by the common 16 bpp "565" variant.
var RGB565Masks = ChannelMasks{Red: 0xF800, Green: 0x07E0, Blue: 0x001F}

// RGB888Masks are the canonical masks for an unmasked 32 bpp BMP (X in the
// high byte is discarded).
var RGB888Masks = ChannelMasks{Red: 0x00FF0000, Green: 0x0000FF00, Blue: 0x000000FF}

// Size is an image's extent in pixels.
type Size struct {
	Width, Height int32
}

// Point is a zero-based pixel coordinate, (0,0) at the image's top-left.
type Point struct {
	X, Y int32
}

// Header is the normalized result of parsing a BMP file's headers. It is a
// plain value type; no part of it borrows the input slice.
type Header struct {
	FileSize       uint32
	ImageDataStart uint32
	ImageDataLen   uint32
	Bpp            Bpp
	ImageSize      Size
	RowOrder       RowOrder
	ChannelMasks   *ChannelMasks
	Compression    CompressionMethod
}

// RowStride is the byte distance between consecutive rows: ceil(width*bpp/8)
// rounded up to a multiple of 4.
func (h *Header) RowStride() uint32 {
	return rowStride(uint32(h.ImageSize.Width), h.Bpp)
}

func rowStride(width uint32, bpp Bpp) uint32 {
	bits := uint64(width) * uint64(bpp)
	return uint32(((bits + 31) / 32) * 4)
}

const (
	fileHeaderLen = 14

	dibSizeCore  = 12
	dibSizeInfo  = 40
	dibSizeV2    = 52
	dibSizeV3    = 56
	dibSizeV4    = 108
	dibSizeV5    = 124
)

// parsedHeader bundles the normalized Header with the location of the color
// table bytes, still expressed as offsets into the original input.
type parsedHeader struct {
	header            Header
	colorTableStart   uint32
	colorTableEnd     uint32
	colorTableEntrySz uint32 // 3 for CORE-style palettes, 4 otherwise
}

// parseFileAndDibHeader implements spec.md section 4.2, steps 1-8.
func parseFileAndDibHeader(r byteReader) (parsedHeader, error) {
	sig0, err := r.readU8(0)
	if err != nil {
		return parsedHeader{}, err
	}
	sig1, err := r.readU8(1)
	if err != nil {
		return parsedHeader{}, err
	}
	if sig0 != 0x42 || sig1 != 0x4D {
		return parsedHeader{}, newParseError(ErrInvalidFileSignature)
	}

	fileSize, err := r.readU32(2)
	if err != nil {
		return parsedHeader{}, err
	}
	// offsets 6,8: two reserved u16 fields, skipped.
	imageDataStart, err := r.readU32(10)
	if err != nil {
		return parsedHeader{}, err
	}

	dibStart := uint32(fileHeaderLen)
	dibSize, err := r.readU32(dibStart)
	if err != nil {
		return parsedHeader{}, err
	}

	switch dibSize {
	case dibSizeCore, dibSizeInfo, dibSizeV2, dibSizeV3, dibSizeV4, dibSizeV5:
	default:
		return parsedHeader{}, newParseErrorValue(ErrUnsupportedDibHeaderSize, dibSize)
	}

	var (
		width, height     int32
		bpp               Bpp
		compression       = CompressionRGB
		imageDataLen      uint32
		masks             *ChannelMasks
		colorsUsed        uint32
		colorTableEntrySz uint32 = 4
	)

	if dibSize == dibSizeCore {
		w16, err := r.readI16(dibStart + 4)
		if err != nil {
			return parsedHeader{}, err
		}
		h16, err := r.readI16(dibStart + 6)
		if err != nil {
			return parsedHeader{}, err
		}
		planes, err := r.readU16(dibStart + 8)
		if err != nil {
			return parsedHeader{}, err
		}
		if planes != 1 {
			return parsedHeader{}, newParseError(ErrInvalidImageDimensions)
		}
		bppRaw, err := r.readU16(dibStart + 10)
		if err != nil {
			return parsedHeader{}, err
		}
		width, height = int32(w16), int32(h16)
		bpp = Bpp(bppRaw)
		colorTableEntrySz = 3
	} else {
		w32, err := r.readI32(dibStart + 4)
		if err != nil {
			return parsedHeader{}, err
		}
		h32, err := r.readI32(dibStart + 8)
		if err != nil {
			return parsedHeader{}, err
		}
		planes, err := r.readU16(dibStart + 12)
		if err != nil {
			return parsedHeader{}, err
		}
		if planes != 1 {
			return parsedHeader{}, newParseError(ErrInvalidImageDimensions)
		}
		bppRaw, err := r.readU16(dibStart + 14)
		if err != nil {
			return parsedHeader{}, err
		}
		compRaw, err := r.readU32(dibStart + 16)
		if err != nil {
			return parsedHeader{}, err
		}
		switch CompressionMethod(compRaw) {
		case CompressionRGB, CompressionBitfields, CompressionAlphaBitfields:
		default:
			return parsedHeader{}, newParseErrorValue(ErrUnsupportedCompressionMethod, compRaw)
		}
		compression = CompressionMethod(compRaw)

		imageDataLen, err = r.readU32(dibStart + 20)
		if err != nil {
			return parsedHeader{}, err
		}
		colorsUsed, err = r.readU32(dibStart + 32)
		if err != nil {
			return parsedHeader{}, err
		}

		width, height = w32, h32
		bpp = Bpp(bppRaw)

		hasBitfields := compression == CompressionBitfields || compression == CompressionAlphaBitfields

		switch dibSize {
		case dibSizeInfo:
			if hasBitfields {
				maskLen := uint32(12)
				if compression == CompressionAlphaBitfields {
					maskLen = 16
				}
				m, err := readMasks(r, dibStart+dibSize, maskLen/4)
				if err != nil {
					return parsedHeader{}, err
				}
				masks = m
			}
		case dibSizeV2:
			if hasBitfields {
				m, err := readMasks(r, dibStart+40, 3)
				if err != nil {
					return parsedHeader{}, err
				}
				masks = m
			}
		case dibSizeV3:
			if hasBitfields {
				m, err := readMasks(r, dibStart+40, 4)
				if err != nil {
					return parsedHeader{}, err
				}
				masks = m
			}
		case dibSizeV4, dibSizeV5:
			// Channel mask fields always exist at this fixed offset in
			// V4/V5 headers, regardless of the declared compression.
			m, err := readMasks(r, dibStart+40, 4)
			if err != nil {
				return parsedHeader{}, err
			}
			masks = m
		}
	}

	if width <= 0 || height == 0 {
		return parsedHeader{}, newParseError(ErrInvalidImageDimensions)
	}
	if !bpp.valid() {
		return parsedHeader{}, newParseErrorValue(ErrUnsupportedBpp, uint32(bpp))
	}

	// Channel masks only have meaning for the two depths that the
	// Normalized Pixel View interprets them at (section 4.5); a
	// BITMAPV4HEADER/BITMAPV5HEADER on, say, a 24 bpp BI_RGB image still
	// carries the mask fields structurally but they are unused filler, so
	// they are dropped here rather than validated.
	if bpp != Bpp16 && bpp != Bpp32 {
		masks = nil
	}

	if masks != nil {
		if err := validateMasks(masks); err != nil {
			return parsedHeader{}, err
		}
	}

	order := BottomUp
	if height < 0 {
		order = TopDown
		height = -height
	}

	// The declared length is informational only; a file row layout is fully
	// determined by width, height and bpp, so the required region is always
	// recomputed from those rather than trusted from the header.
	stride := rowStride(uint32(width), bpp)
	required := uint64(stride) * uint64(height)
	if required > uint64(^uint32(0)) {
		return parsedHeader{}, newParseError(ErrTruncated)
	}
	imageDataLen = uint32(required)

	if uint64(imageDataStart)+required > uint64(len(r.data)) {
		return parsedHeader{}, newParseError(ErrTruncatedImageData)
	}

	colorTableStart := dibStart + dibSize
	colorTableEnd := imageDataStart
	if colorTableEnd < colorTableStart {
		colorTableEnd = colorTableStart
	}

	if bpp == Bpp1 || bpp == Bpp4 || bpp == Bpp8 {
		maxEntries := uint32(1) << uint32(bpp)
		available := (colorTableEnd - colorTableStart) / colorTableEntrySz
		entries := colorsUsed
		if entries == 0 || entries > available {
			entries = available
		}
		if entries > maxEntries {
			entries = maxEntries
		}
		if entries == 0 {
			return parsedHeader{}, newParseError(ErrColorTableMissing)
		}
		colorTableEnd = colorTableStart + entries*colorTableEntrySz
	} else {
		colorTableEnd = colorTableStart
	}

	h := Header{
		FileSize:       fileSize,
		ImageDataStart: imageDataStart,
		ImageDataLen:   imageDataLen,
		Bpp:            bpp,
		ImageSize:      Size{Width: width, Height: height},
		RowOrder:       order,
		ChannelMasks:   masks,
		Compression:    compression,
	}

	return parsedHeader{
		header:            h,
		colorTableStart:   colorTableStart,
		colorTableEnd:     colorTableEnd,
		colorTableEntrySz: colorTableEntrySz,
	}, nil
}

// readMasks reads n consecutive little-endian u32 masks starting at offset:
// red, green, blue, and (if n == 4) alpha.
func readMasks(r byteReader, offset uint32, n uint32) (*ChannelMasks, error) {
	red, err := r.readU32(offset)
	if err != nil {
		return nil, err
	}
	green, err := r.readU32(offset + 4)
	if err != nil {
		return nil, err
	}
	blue, err := r.readU32(offset + 8)
	if err != nil {
		return nil, err
	}
	var alpha uint32
	if n >= 4 {
		alpha, err = r.readU32(offset + 12)
		if err != nil {
			return nil, err
		}
	}
	return &ChannelMasks{Red: red, Green: green, Blue: blue, Alpha: alpha}, nil
}

func validateMasks(m *ChannelMasks) error {
	if m.Red == 0 || m.Green == 0 || m.Blue == 0 {
		return newParseError(ErrInvalidChannelMasks)
	}
	combined := []uint32{m.Red, m.Green, m.Blue}
	if m.Alpha != 0 {
		combined = append(combined, m.Alpha)
	}
	for i := 0; i < len(combined); i++ {
		for j := i + 1; j < len(combined); j++ {
			if combined[i]&combined[j] != 0 {
				return newParseError(ErrInvalidChannelMasks)
			}
		}
	}
	return nil
}
