// Package formats names the pixel formats camgrab understands and maps them
// between the V4L2 and Media Foundation representations.
package formats

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// FourCC is a four character pixel format code, eg "MJPG" or "YUYV".
type FourCC [4]byte

var (
	MJPG = FourCC{'M', 'J', 'P', 'G'}
	YUYV = FourCC{'Y', 'U', 'Y', 'V'}
	YUY2 = FourCC{'Y', 'U', 'Y', '2'}
	NV12 = FourCC{'N', 'V', '1', '2'}
	I420 = FourCC{'I', '4', '2', '0'}
	YU12 = FourCC{'Y', 'U', '1', '2'}
	RGB3 = FourCC{'R', 'G', 'B', '3'}
	BGR3 = FourCC{'B', 'G', 'R', '3'}
)

// Preferred lists formats in the order a capture backend should pick them.
// Compressed frames come first since they allow the largest frame sizes over
// USB 2.0.
var Preferred = []FourCC{MJPG, YUYV, YUY2, NV12, I420, YU12, RGB3, BGR3}

// subtypeBase is the tail shared by every FourCC based media subtype GUID,
// XXXXXXXX-0000-0010-8000-00AA00389B71.
var subtypeBase = uuid.MustParse("00000000-0000-0010-8000-00AA00389B71")

func (f FourCC) String() string {
	return string(f[:])
}

// Uint32 returns the little endian code used by V4L2 pixelformat fields.
func (f FourCC) Uint32() uint32 {
	return binary.LittleEndian.Uint32(f[:])
}

// FromUint32 converts a V4L2 pixelformat value.
func FromUint32(v uint32) FourCC {
	var f FourCC
	binary.LittleEndian.PutUint32(f[:], v)
	return f
}

// GUID returns the media subtype GUID for f.
func (f FourCC) GUID() uuid.UUID {
	id := subtypeBase
	// Data1 is stored big endian in the canonical form.
	binary.BigEndian.PutUint32(id[0:4], f.Uint32())
	return id
}

// FromGUID extracts the FourCC from a media subtype GUID. It returns false for
// GUIDs that are not FourCC based, for example MFVideoFormat_RGB24.
func FromGUID(id uuid.UUID) (FourCC, bool) {
	if [12]byte(id[4:]) != [12]byte(subtypeBase[4:]) {
		return FourCC{}, false
	}
	f := FromUint32(binary.BigEndian.Uint32(id[0:4]))
	for _, c := range f {
		if c < 0x20 || c > 0x7e {
			return FourCC{}, false
		}
	}
	return f, true
}

// Canonical folds aliases onto one name so decoders only need to know one of
// them.
func Canonical(f FourCC) FourCC {
	switch f {
	case YUY2:
		return YUYV
	case YU12:
		return I420
	}
	return f
}

// Rank returns the position of f in Preferred, or -1 when f is not supported.
func Rank(f FourCC) int {
	for i, p := range Preferred {
		if p == f {
			return i
		}
	}
	return -1
}
