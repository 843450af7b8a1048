package codec

import "fmt"

// FlipVertical flips bitmap data vertically (in-place).
// RDP sends bitmaps bottom-up, this flips them to top-down.
func FlipVertical(data []byte, width, height, bytesPerPixel int) {
	if height <= 1 {
		return
	}

	rowDelta := width * bytesPerPixel
	if rowDelta <= 0 || len(data) < height*rowDelta {
		return
	}

	tmp := make([]byte, rowDelta)
	half := height / 2

	for i := 0; i < half; i++ {
		topLine := i * rowDelta
		bottomLine := (height - 1 - i) * rowDelta

		copy(tmp, data[topLine:topLine+rowDelta])
		copy(data[topLine:topLine+rowDelta], data[bottomLine:bottomLine+rowDelta])
		copy(data[bottomLine:bottomLine+rowDelta], tmp)
	}
}

// RGB555ToRGB24 converts 16-bit RGB555 (1 unused bit, 5/5/5) to 24-bit RGB.
func RGB555ToRGB24(src []byte, dst []byte) {
	srcIdx, dstIdx := 0, 0

	for srcIdx+1 < len(src) && dstIdx+2 < len(dst) {
		pel := uint16(src[srcIdx]) | (uint16(src[srcIdx+1]) << 8)

		r := (pel & 0x7C00) >> 10
		g := (pel & 0x03E0) >> 5
		b := pel & 0x001F

		r = (r << 3) | (r >> 2)
		g = (g << 3) | (g >> 2)
		b = (b << 3) | (b >> 2)

		dst[dstIdx] = byte(r)
		dst[dstIdx+1] = byte(g)
		dst[dstIdx+2] = byte(b)

		srcIdx += 2
		dstIdx += 3
	}
}

// RGB565ToRGB24 converts 16-bit RGB565 to 24-bit RGB.
func RGB565ToRGB24(src []byte, dst []byte) {
	srcIdx, dstIdx := 0, 0

	for srcIdx+1 < len(src) && dstIdx+2 < len(dst) {
		pel := uint16(src[srcIdx]) | (uint16(src[srcIdx+1]) << 8)

		r := (pel & 0xF800) >> 11
		g := (pel & 0x07E0) >> 5
		b := pel & 0x001F

		r = (r << 3) | (r >> 2)
		g = (g << 2) | (g >> 4)
		b = (b << 3) | (b >> 2)

		dst[dstIdx] = byte(r)
		dst[dstIdx+1] = byte(g)
		dst[dstIdx+2] = byte(b)

		srcIdx += 2
		dstIdx += 3
	}
}

// BGR24ToRGB24 swaps byte order for 24-bit BGR pixels.
func BGR24ToRGB24(src []byte, dst []byte) {
	srcIdx, dstIdx := 0, 0

	for srcIdx+2 < len(src) && dstIdx+2 < len(dst) {
		dst[dstIdx] = src[srcIdx+2]
		dst[dstIdx+1] = src[srcIdx+1]
		dst[dstIdx+2] = src[srcIdx]

		srcIdx += 3
		dstIdx += 3
	}
}

// BGRX32ToRGB24 drops the 32-bit BGRX pixel's padding/alpha byte.
func BGRX32ToRGB24(src []byte, dst []byte) {
	srcIdx, dstIdx := 0, 0

	for srcIdx+3 < len(src) && dstIdx+2 < len(dst) {
		dst[dstIdx] = src[srcIdx+2]
		dst[dstIdx+1] = src[srcIdx+1]
		dst[dstIdx+2] = src[srcIdx]

		srcIdx += 4
		dstIdx += 3
	}
}

// Palette8ToRGB24 maps 8-bit palette indices to 24-bit RGB using pal, a
// 256-entry RGB lookup table (e.g. from a Palette Update). A nil or short
// palette falls back to treating the index as grayscale intensity.
func Palette8ToRGB24(src []byte, dst []byte, pal []byte) {
	dstIdx := 0

	for i := 0; i < len(src) && dstIdx+2 < len(dst); i++ {
		idx := int(src[i])

		var r, g, b byte
		if len(pal) >= (idx+1)*3 {
			r, g, b = pal[idx*3], pal[idx*3+1], pal[idx*3+2]
		} else {
			r, g, b = src[i], src[i], src[i]
		}

		dst[dstIdx] = r
		dst[dstIdx+1] = g
		dst[dstIdx+2] = b
		dstIdx += 3
	}
}

// DecompressToRGB24 decompresses (if needed) an interleaved-RLE or raw
// bitmap payload for the given bpp and converts it to top-down 24-bit RGB,
// ready for pasting into a raster surface. pal supplies the active palette
// for 8bpp payloads; it is ignored for other depths. Decode failures
// surface the RLE error taxonomy (ErrRLETruncated, ErrRLEUnknownOpcode,
// ErrRLEOverflow).
func DecompressToRGB24(src []byte, width, height, bpp int, isCompressed bool, rowDelta int, pal []byte) ([]byte, error) {
	bytesPerPixel := (bpp + 7) / 8
	if bytesPerPixel == 0 {
		return nil, fmt.Errorf("codec: unsupported bpp %d", bpp)
	}

	rawSize := width * height * bytesPerPixel
	var raw []byte

	if isCompressed {
		raw = make([]byte, rawSize)

		var err error
		switch bpp {
		case 8:
			err = RLEDecompress8(src, raw, rowDelta)
		case 15:
			err = RLEDecompress15(src, raw, rowDelta)
		case 16:
			err = RLEDecompress16(src, raw, rowDelta)
		case 24:
			err = RLEDecompress24(src, raw, rowDelta)
		case 32:
			err = RLEDecompress32(src, raw, rowDelta)
		default:
			return nil, fmt.Errorf("codec: unsupported bpp %d", bpp)
		}
		if err != nil {
			return nil, err
		}
	} else {
		if len(src) < rawSize {
			return nil, fmt.Errorf("codec: raw bitmap is %d bytes, want %d: %w", len(src), rawSize, ErrRLETruncated)
		}
		raw = src[:rawSize]
	}

	FlipVertical(raw, width, height, bytesPerPixel)

	rgb := make([]byte, width*height*3)
	switch bpp {
	case 8:
		Palette8ToRGB24(raw, rgb, pal)
	case 15:
		RGB555ToRGB24(raw, rgb)
	case 16:
		RGB565ToRGB24(raw, rgb)
	case 24:
		BGR24ToRGB24(raw, rgb)
	case 32:
		BGRX32ToRGB24(raw, rgb)
	default:
		return nil, fmt.Errorf("codec: unsupported bpp %d", bpp)
	}

	return rgb, nil
}
