package devserver

import (
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"

	"github.com/nfnt/resize"

	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/render"
)

// InputSize is the square edge the classifier input is resized to.
const InputSize = 229

// Classifier scores an image against the five severity grades. The returned
// probabilities are indexed by severity level and sum to 1.
type Classifier interface {
	Classify(img image.Image) ([]float64, error)
}

// StubClassifier is a deterministic stand-in for the retinopathy model. It
// derives the grade from the mean brightness of the resized image: darker
// images score as more severe.
type StubClassifier struct {
	Size uint
}

// Classify implements Classifier.
func (s StubClassifier) Classify(img image.Image) ([]float64, error) {
	size := s.Size
	if size == 0 {
		size = InputSize
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.Newf("empty image").
			Component("devserver").
			Category(errors.CategoryValidation).
			Build()
	}

	resized := resize.Resize(size, size, img, resize.Bilinear)
	rb := resized.Bounds()

	var sum float64
	for y := rb.Min.Y; y < rb.Max.Y; y++ {
		for x := rb.Min.X; x < rb.Max.X; x++ {
			r, g, bl, _ := resized.At(x, y).RGBA()
			sum += (float64(r) + float64(g) + float64(bl)) / (3 * 65535.0)
		}
	}
	mean := sum / float64(rb.Dx()*rb.Dy())

	return gradeDistribution(mean), nil
}

// gradeDistribution maps brightness 0..1 to a softmax over the grades centred
// on (1-brightness) * MaxSeverity.
func gradeDistribution(brightness float64) []float64 {
	const sharpness = 1.5
	centre := (1 - brightness) * float64(render.MaxSeverity)

	probs := make([]float64, render.MaxSeverity+1)
	var total float64
	for i := range probs {
		d := float64(i) - centre
		probs[i] = math.Exp(-sharpness * d * d)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}

// argmax returns the index of the largest value; ties go to the lower index.
func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// decodeImage decodes a PNG, JPEG or GIF upload.
func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.New(err).
			Component("devserver").
			Category(errors.CategoryValidation).
			Context("operation", "decode-image").
			Build()
	}
	return img, nil
}
