package media

import (
	"math"
	"path"
)

const ratioTolerance = 0.1

// Classify buckets a frame size into an orientation. Unmeasurable sizes are
// treated as Other.
func Classify(width, height int) Orientation {
	if width <= 0 || height <= 0 {
		return Other
	}
	ratio := float64(width) / float64(height)
	if math.Abs(ratio-16.0/9.0) < ratioTolerance {
		return Landscape
	} else if math.Abs(ratio-9.0/16.0) < ratioTolerance {
		return Portrait
	}
	return Other
}

func (o Orientation) Valid() bool {
	switch o {
	case Landscape, Portrait, Other:
		return true
	}
	return false
}

// StorageKey returns "<orientation>/<fileName>".
func StorageKey(o Orientation, fileName string) string {
	if !o.Valid() {
		o = Other
	}
	return path.Join(string(o), fileName)
}
