package bmp

// RGB888 is the built-in canonical 24-bit color type. It is used whenever a
// caller doesn't need a framework-specific color type of its own.
type RGB888 struct {
	R, G, B uint8
}

// ColorConverter adapts the three canonical forms a BMP pixel can be
// normalized to into a caller-chosen color type C. Exactly one field is
// invoked per pixel; which one is decided once, at Bmp construction, from
// the image's bit depth and channel masks — not per pixel — so there is no
// runtime dispatch cost while iterating.
type ColorConverter[C any] struct {
	// FromRGB555 builds C from a 5/5/5-bit triple, used for 16 bpp images
	// that are (or collapse to) the canonical RGB555 layout.
	FromRGB555 func(r5, g5, b5 uint8) C
	// FromRGB565 builds C from a 5/6/5-bit triple, used for 16 bpp images
	// using the common RGB565 layout.
	FromRGB565 func(r5, g6, b5 uint8) C
	// FromRGB888 builds C from an 8/8/8-bit triple. Used for every color
	// depth that isn't one of the two 16 bpp layouts above: indexed
	// images, 24 bpp, 32 bpp, and 16 bpp images under an arbitrary mask.
	FromRGB888 func(r8, g8, b8 uint8) C
}

// RGB888Converter is the identity ColorConverter for the built-in RGB888
// type: every capability widens or passes through to an 8-bit triple.
var RGB888Converter = ColorConverter[RGB888]{
	FromRGB555: func(r5, g5, b5 uint8) RGB888 {
		return RGB888{R: expand5to8(r5), G: expand5to8(g5), B: expand5to8(b5)}
	},
	FromRGB565: func(r5, g6, b5 uint8) RGB888 {
		return RGB888{R: expand5to8(r5), G: expand6to8(g6), B: expand5to8(b5)}
	},
	FromRGB888: func(r8, g8, b8 uint8) RGB888 {
		return RGB888{R: r8, G: g8, B: b8}
	},
}

func expand5to8(v uint8) uint8 { return (v << 3) | (v >> 2) }
func expand6to8(v uint8) uint8 { return (v << 2) | (v >> 4) }

// nativeKind records which of the three conversion capabilities an image's
// pixels naturally map to, decided once when a Bmp is constructed.
type nativeKind int

const (
	nativeRGB888 nativeKind = iota
	nativeRGB555
	nativeRGB565
)

func detectNativeKind(h *Header) nativeKind {
	if h.Bpp != Bpp16 {
		return nativeRGB888
	}
	if h.ChannelMasks == nil {
		return nativeRGB555
	}
	switch *h.ChannelMasks {
	case RGB555Masks:
		return nativeRGB555
	case RGB565Masks:
		return nativeRGB565
	default:
		return nativeRGB888
	}
}

// Bmp is a normalized, read-only view over a BMP image that yields pixels
// as a caller-chosen color type C instead of raw bit patterns.
type Bmp[C any] struct {
	raw       RawBmp
	converter ColorConverter[C]
	kind      nativeKind
}

// ParseBmp parses data and wraps the result in a normalized view that
// converts pixels to C using conv.
func ParseBmp[C any](data []byte, conv ColorConverter[C]) (Bmp[C], error) {
	raw, err := Parse(data)
	if err != nil {
		return Bmp[C]{}, err
	}
	return NewBmp(raw, conv), nil
}

// NewBmp wraps an already-parsed RawBmp in a normalized view.
func NewBmp[C any](raw RawBmp, conv ColorConverter[C]) Bmp[C] {
	return Bmp[C]{
		raw:       raw,
		converter: conv,
		kind:      detectNativeKind(raw.Header()),
	}
}

// AsRaw returns the underlying RawBmp, for callers that also need header or
// color table access below the normalized view.
func (b *Bmp[C]) AsRaw() *RawBmp {
	return &b.raw
}

// Size returns the image's (width, height) in pixels.
func (b *Bmp[C]) Size() Size {
	return b.raw.Size()
}

// normalizeRGB888 converts one raw pixel value into an 8-bit canonical RGB triple
// per spec.md section 4.5, steps 1-6.
func (b *Bmp[C]) normalizeRGB888(raw uint32) (r8, g8, b8 uint8) {
	h := b.raw.Header()

	if h.Bpp == Bpp1 || h.Bpp == Bpp4 || h.Bpp == Bpp8 {
		table, ok := b.raw.ColorTable()
		rgb := uint32(0)
		if ok {
			if v, found := table.Get(raw); found {
				rgb = v
			}
		}
		return uint8(rgb >> 16), uint8(rgb >> 8), uint8(rgb)
	}

	if h.Bpp == Bpp24 {
		return uint8(raw >> 16), uint8(raw >> 8), uint8(raw)
	}

	if h.Bpp == Bpp32 {
		masks := h.ChannelMasks
		if masks == nil {
			return uint8(raw >> 16), uint8(raw >> 8), uint8(raw)
		}
		return extractChannel(raw, masks.Red), extractChannel(raw, masks.Green), extractChannel(raw, masks.Blue)
	}

	// Bpp16
	masks := h.ChannelMasks
	if masks == nil {
		masks = &RGB555Masks
	}
	return extractChannel(raw, masks.Red), extractChannel(raw, masks.Green), extractChannel(raw, masks.Blue)
}

// toColor builds C from a normalized 8-bit triple, picking whichever
// conversion capability matches this image's native color depth.
func (b *Bmp[C]) toColor(r8, g8, b8 uint8) C {
	switch b.kind {
	case nativeRGB555:
		return b.converter.FromRGB555(r8>>3, g8>>3, b8>>3)
	case nativeRGB565:
		return b.converter.FromRGB565(r8>>3, g8>>2, b8>>3)
	default:
		return b.converter.FromRGB888(r8, g8, b8)
	}
}

// Pixel returns the normalized color at p, or ok == false if p lies outside
// the image bounds.
func (b *Bmp[C]) Pixel(p Point) (color C, ok bool) {
	raw, ok := b.raw.Pixel(p)
	if !ok {
		return color, false
	}
	r8, g8, b8 := b.normalizeRGB888(raw)
	return b.toColor(r8, g8, b8), true
}

// Pixels is the normalized, restartable pixel sequence: position paired
// with the color type C.
type Pixels[C any] struct {
	bmp *Bmp[C]
	raw *RawPixels
}

// Pixels returns a fresh normalized pixel iterator.
func (b *Bmp[C]) Pixels() *Pixels[C] {
	return &Pixels[C]{bmp: b, raw: b.raw.Pixels()}
}

// Next advances the iterator and returns the next (position, color) pair,
// or ok == false once every pixel has been produced.
func (it *Pixels[C]) Next() (position Point, color C, ok bool) {
	rawPixel, ok := it.raw.Next()
	if !ok {
		return Point{}, color, false
	}
	r8, g8, b8 := it.bmp.normalizeRGB888(rawPixel.Color)
	return rawPixel.Position, it.bmp.toColor(r8, g8, b8), true
}
