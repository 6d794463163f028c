package decode

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"sync"
)

const (
	markerSOI = 0xd8
	markerEOI = 0xd9
	markerSOS = 0xda
	markerDHT = 0xc4
)

var errNotJPEG = errors.New("not a jpeg stream")

// DecodeMJPEG decodes one motion JPEG frame. Many UVC cameras omit the
// Huffman tables from every frame and rely on the decoder to assume the
// standard ones, so they are inserted when missing.
func DecodeMJPEG(data []byte) (image.Image, error) {
	fixed, err := InsertHuffmanTables(data)
	if err != nil {
		return nil, err
	}
	return jpeg.Decode(bytes.NewReader(fixed))
}

// InsertHuffmanTables returns data with the standard JPEG Huffman tables added
// in front of the first scan if the stream defines none. Streams that already
// carry a DHT segment are returned unchanged.
func InsertHuffmanTables(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xff || data[1] != markerSOI {
		return nil, errNotJPEG
	}
	sos := -1
	i := 2
	for i+4 <= len(data) && sos < 0 {
		if data[i] != 0xff {
			return nil, errNotJPEG
		}
		marker := data[i+1]
		switch {
		case marker == 0xff:
			// fill byte
			i++
			continue
		case marker == markerDHT:
			return data, nil
		case marker == markerSOS:
			sos = i
			continue
		case marker == markerEOI:
			return nil, errNotJPEG
		case marker >= 0xd0 && marker <= 0xd7, marker == 0x01:
			i += 2
			continue
		}
		i += 2 + (int(data[i+2])<<8 | int(data[i+3]))
	}
	if sos < 0 {
		return nil, errNotJPEG
	}

	dht := defaultHuffmanTables()
	out := make([]byte, 0, len(data)+len(dht))
	out = append(out, data[:sos]...)
	out = append(out, dht...)
	out = append(out, data[sos:]...)
	return out, nil
}

var (
	dhtOnce sync.Once
	dhtData []byte
)

// defaultHuffmanTables returns the DHT segments written by image/jpeg, which
// always uses the example tables from Annex K of the JPEG standard. Those are
// the tables the motion JPEG format implies when a frame leaves them out.
func defaultHuffmanTables() []byte {
	dhtOnce.Do(func() {
		var buf bytes.Buffer
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			panic(err)
		}
		dhtData = extractSegments(buf.Bytes(), markerDHT)
	})
	return dhtData
}

// extractSegments copies every segment with the given marker that appears
// before the first scan.
func extractSegments(data []byte, want byte) []byte {
	var out []byte
	for i := 2; i+4 <= len(data); {
		marker := data[i+1]
		if marker == markerSOS {
			break
		}
		n := 2 + (int(data[i+2])<<8 | int(data[i+3]))
		if marker == want {
			out = append(out, data[i:i+n]...)
		}
		i += n
	}
	return out
}
