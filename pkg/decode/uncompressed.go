package decode

import (
	"image"

	"github.com/kevmo314/camgrab/pkg/formats"
)

func decodeYUYV(data []byte, width, height int) (image.Image, error) {
	if err := checkSize(formats.YUYV, data, width, height, width*height*2); err != nil {
		return nil, err
	}
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)

	for y := 0; y < height; y++ {
		for x := 0; x+1 < width; x += 2 {
			i := (y*width + x) * 2

			yi := y*img.YStride + x
			ci := y*img.CStride + x/2

			img.Y[yi] = data[i]
			img.Cb[ci] = data[i+1]
			img.Y[yi+1] = data[i+2]
			img.Cr[ci] = data[i+3]
		}
	}

	return img, nil
}

func decodeNV12(data []byte, width, height int) (image.Image, error) {
	ySize := width * height
	if err := checkSize(formats.NV12, data, width, height, ySize+ySize/2); err != nil {
		return nil, err
	}
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)

	copy(img.Y, data[:ySize])

	// Chroma is interleaved as CbCr pairs.
	uv := data[ySize:]
	for i := range img.Cb {
		if 2*i+1 >= len(uv) {
			break
		}
		img.Cb[i] = uv[2*i]
		img.Cr[i] = uv[2*i+1]
	}

	return img, nil
}

func decodeI420(data []byte, width, height int) (image.Image, error) {
	ySize := width * height
	cSize := ((width + 1) / 2) * ((height + 1) / 2)
	if err := checkSize(formats.I420, data, width, height, ySize+2*cSize); err != nil {
		return nil, err
	}
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)

	copy(img.Y, data[:ySize])
	copy(img.Cb, data[ySize:ySize+cSize])
	copy(img.Cr, data[ySize+cSize:ySize+2*cSize])

	return img, nil
}
