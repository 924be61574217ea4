package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"beforeafter/pkg/config"
	errs "beforeafter/pkg/errors"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/storage"

	"github.com/disintegration/imaging"
)

// ErrTooSmall is returned (wrapped) for images below the minimum dimension
var ErrTooSmall = errs.New(errs.ErrorTypeTooSmall, "image too small to process")

// Sides in output order
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Options controls validation and output encoding
type Options struct {
	MinDimension int
	JPEGQuality  int
}

// OptionsFromConfig builds Options from the processing section
func OptionsFromConfig(cfg *config.ProcessingConfig) Options {
	return Options{
		MinDimension: cfg.MinDimension,
		JPEGQuality:  cfg.JPEGQuality,
	}
}

// Processor splits a raw image into left/right halves, trims the bottom
// strip from each and writes them as JPEGs.
type Processor struct {
	store  *storage.Manager
	opts   Options
	logger logger.Logger
}

// New creates a Processor writing into store's processed directory
func New(store *storage.Manager, opts Options, log logger.Logger) *Processor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if opts.MinDimension <= 0 {
		opts.MinDimension = 100
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 95
	}
	return &Processor{
		store:  store,
		opts:   opts,
		logger: log.WithField("component", "imageproc"),
	}
}

// Process writes <baseName>_left_cropped.jpg and <baseName>_right_cropped.jpg.
// Either both files are written or neither is.
func (p *Processor) Process(inputPath, baseName string, cropHeight int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(errs.ErrorTypeDecode, fmt.Sprintf("panic while processing %s: %v", inputPath, r))
		}
	}()

	img, err := imaging.Open(inputPath)
	if err != nil {
		p.logger.WithError(err).WithField("path", inputPath).Error("Failed to decode image")
		return errs.Wrap(errs.ErrorTypeDecode, err, "failed to decode image")
	}

	mode := Classify(img)
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width < p.opts.MinDimension || height < p.opts.MinDimension {
		p.logger.WarnWithFields("Image too small to process", map[string]interface{}{
			"path":   inputPath,
			"width":  width,
			"height": height,
		})
		return fmt.Errorf("%w: %dx%d", ErrTooSmall, width, height)
	}

	if mode.HasAlpha() {
		img = flattenOpaque(img)
		bounds = img.Bounds()
	}

	trim := EffectiveCrop(cropHeight, height)
	halves := SplitRects(bounds, trim)

	encoded := make([][]byte, len(halves))
	for i, rect := range halves {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, imaging.Crop(img, rect), imaging.JPEG, imaging.JPEGQuality(p.opts.JPEGQuality)); err != nil {
			return errs.Wrap(errs.ErrorTypeDecode, err, "failed to encode jpeg")
		}
		encoded[i] = buf.Bytes()
	}

	leftPath := p.store.ProcessedPath(baseName, SideLeft)
	rightPath := p.store.ProcessedPath(baseName, SideRight)

	if err := storage.WriteFileAtomic(leftPath, encoded[0]); err != nil {
		return errs.Wrap(errs.ErrorTypeIO, err, "failed to write left half")
	}
	if err := storage.WriteFileAtomic(rightPath, encoded[1]); err != nil {
		if rmErr := storage.Remove(leftPath); rmErr != nil {
			p.logger.WithError(rmErr).Warn("Failed to remove orphaned left half")
		}
		return errs.Wrap(errs.ErrorTypeIO, err, "failed to write right half")
	}

	p.logger.DebugWithFields("Image processed", map[string]interface{}{
		"path":       inputPath,
		"mode":       mode.String(),
		"width":      width,
		"height":     height,
		"crop":       trim,
		"left_path":  leftPath,
		"right_path": rightPath,
	})
	return nil
}

// EffectiveCrop caps the bottom trim at a quarter of the image height
func EffectiveCrop(cropHeight, height int) int {
	if cropHeight < 0 {
		cropHeight = 0
	}
	return min(cropHeight, height/4)
}

// SplitRects returns the left and right output rectangles for an image with
// the given bounds after trimming trim rows from the bottom. For odd widths
// the right half is one pixel wider.
func SplitRects(bounds image.Rectangle, trim int) [2]image.Rectangle {
	mid := bounds.Min.X + bounds.Dx()/2
	bottom := bounds.Max.Y - trim
	return [2]image.Rectangle{
		image.Rect(bounds.Min.X, bounds.Min.Y, mid, bottom),
		image.Rect(mid, bounds.Min.Y, bounds.Max.X, bottom),
	}
}

// flattenOpaque drops the alpha channel, keeping the stored color values
func flattenOpaque(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}
