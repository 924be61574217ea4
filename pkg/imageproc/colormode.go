package imageproc

import "image"

// ColorMode is the coarse color model of a decoded raster
type ColorMode int

const (
	ModeOther ColorMode = iota
	ModeRGB
	ModeRGBA
	ModePaletted
	ModeGray
	ModeCMYK
)

func (m ColorMode) String() string {
	switch m {
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	case ModePaletted:
		return "Paletted"
	case ModeGray:
		return "Gray"
	case ModeCMYK:
		return "CMYK"
	default:
		return "Other"
	}
}

// HasAlpha reports whether images of this mode are flattened to opaque RGB
// before encoding
func (m ColorMode) HasAlpha() bool {
	return m == ModeRGBA || m == ModePaletted
}

// Classify maps a decoded image onto a ColorMode
func Classify(img image.Image) ColorMode {
	switch im := img.(type) {
	case *image.YCbCr:
		return ModeRGB
	case *image.RGBA:
		if im.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.RGBA64:
		if im.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA:
		return ModeRGBA
	case *image.Paletted:
		return ModePaletted
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.CMYK:
		return ModeCMYK
	default:
		return ModeOther
	}
}
