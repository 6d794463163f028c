package camgrab

import "github.com/kevmo314/camgrab/pkg/formats"

// mediaType is one native frame format offered by a device that only
// supports a fixed list of sizes.
type mediaType struct {
	index  uint32
	fourcc formats.FourCC
	width  int
	height int
}

func (m mediaType) area() int { return m.width * m.height }

// better reports whether a should be chosen over b when both have the same
// size.
func (m mediaType) better(b mediaType) bool {
	return formats.Rank(m.fourcc) < formats.Rank(b.fourcc)
}

// chooseMediaType picks the largest type that fits within width x height, the
// way V4L2 drivers round a request down to a supported size. When nothing
// fits the smallest type is returned.
func chooseMediaType(types []mediaType, width, height int) (mediaType, bool) {
	var best, smallest mediaType
	found, supported := false, false
	for _, t := range types {
		if formats.Rank(t.fourcc) < 0 {
			continue
		}
		if !supported || t.area() < smallest.area() || (t.area() == smallest.area() && t.better(smallest)) {
			smallest = t
		}
		supported = true
		if t.width > width || t.height > height {
			continue
		}
		if !found || t.area() > best.area() || (t.area() == best.area() && t.better(best)) {
			best = t
			found = true
		}
	}
	if found {
		return best, true
	}
	return smallest, supported
}

// largestMediaType returns the supported type with the largest frame.
func largestMediaType(types []mediaType) (mediaType, bool) {
	var best mediaType
	found := false
	for _, t := range types {
		if formats.Rank(t.fourcc) < 0 {
			continue
		}
		if !found || t.area() > best.area() || (t.area() == best.area() && t.better(best)) {
			best = t
			found = true
		}
	}
	return best, found
}
