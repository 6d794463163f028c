package camgrab

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/kevmo314/camgrab/pkg/formats"
	"github.com/kevmo314/camgrab/pkg/logger"
	"golang.org/x/sys/windows"
)

// mfDriver captures through a Media Foundation source reader. Media
// Foundation devices expose a fixed list of native media types, so frame size
// requests are rounded to one of them.
type mfDriver struct {
	source     *imfMediaSource
	reader     *imfSourceReader
	cameraCtrl *iamCameraControl
	log        *logger.Logger

	types   []mediaType
	current mediaType

	mu     sync.Mutex
	closed bool
}

func openMF(activate *imfActivate, log *logger.Logger) (d *mfDriver, rerr error) {
	sourcePtr, err := activate.ActivateObject(&iidIMFMediaSource)
	if err != nil {
		return nil, fmt.Errorf("activate media source: %w", err)
	}
	d = &mfDriver{source: (*imfMediaSource)(unsafe.Pointer(sourcePtr)), log: log}
	defer func() {
		if rerr != nil {
			d.Close()
		}
	}()

	if ccPtr, err := d.source.QueryInterface(&iidIAMCameraControl); err == nil {
		d.cameraCtrl = (*iamCameraControl)(unsafe.Pointer(ccPtr))
	}

	if d.reader, err = mfCreateSourceReader(d.source); err != nil {
		return nil, err
	}

	for i := uint32(0); ; i++ {
		mt, err := d.reader.GetNativeMediaType(mfSourceReaderFirstVideoStream, i)
		if err != nil {
			break
		}
		t, ok := describeMediaType(mt)
		mt.Release()
		if ok {
			t.index = i
			d.types = append(d.types, t)
		}
	}
	if len(d.types) == 0 {
		return nil, errors.New("no supported media type")
	}

	if _, _, err := d.SetFrameSize(640, 480); err != nil {
		return nil, err
	}
	d.log.Debug("opened", "format", d.current.fourcc.String(), "width", d.current.width,
		"height", d.current.height, "types", len(d.types))
	return d, nil
}

// describeMediaType reads the FourCC and frame size of a video media type.
func describeMediaType(mt *imfMediaType) (mediaType, bool) {
	subtype, err := mt.GetGUID(&mfMTSubtype)
	if err != nil {
		return mediaType{}, false
	}
	fourcc, ok := fourCCFromGUID(subtype)
	if !ok {
		return mediaType{}, false
	}
	size, err := mt.GetUINT64(&mfMTFrameSize)
	if err != nil {
		return mediaType{}, false
	}
	return mediaType{
		fourcc: fourcc,
		width:  int(size >> 32),
		height: int(size & 0xFFFFFFFF),
	}, true
}

func fourCCFromGUID(g windows.GUID) (formats.FourCC, bool) {
	id, err := uuid.Parse(g.String())
	if err != nil {
		return formats.FourCC{}, false
	}
	return formats.FromGUID(id)
}

func (d *mfDriver) SetFrameSize(width, height int) (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, 0, errors.New("device is closed")
	}

	t, ok := chooseMediaType(d.types, width, height)
	if !ok {
		return d.current.width, d.current.height, fmt.Errorf("no media type for %dx%d", width, height)
	}
	if t == d.current {
		return t.width, t.height, nil
	}

	mt, err := d.reader.GetNativeMediaType(mfSourceReaderFirstVideoStream, t.index)
	if err != nil {
		return d.current.width, d.current.height, err
	}
	defer mt.Release()
	if err := d.reader.SetCurrentMediaType(mfSourceReaderFirstVideoStream, mt); err != nil {
		return d.current.width, d.current.height, err
	}
	d.current = t
	return t.width, t.height, nil
}

func (d *mfDriver) FrameSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.width, d.current.height
}

func (d *mfDriver) MaxFrameSize() (int, int, error) {
	t, ok := largestMediaType(d.types)
	if !ok {
		return 0, 0, errors.New("no supported media type")
	}
	return t.width, t.height, nil
}

func (d *mfDriver) SetFocus(value int) error {
	if d.cameraCtrl == nil {
		return errors.New("camera control not available")
	}
	return d.cameraCtrl.Set(cameraControlFocus, int32(value), cameraControlFlagsManual)
}

func (d *mfDriver) Autofocus() (bool, error) {
	if d.cameraCtrl == nil {
		return false, errors.New("camera control not available")
	}
	_, flags, err := d.cameraCtrl.Get(cameraControlFocus)
	if err != nil {
		return false, err
	}
	return flags&cameraControlFlagsAuto != 0, nil
}

// ReadFrame reads one sample. The source reader blocks until the device
// delivers a sample; its own timeout applies.
func (d *mfDriver) ReadFrame(timeout time.Duration) (*Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.New("device is closed")
	}

	deadline := time.Now().Add(timeout)
	for {
		flags, sample, err := d.reader.ReadSample(mfSourceReaderFirstVideoStream)
		if err != nil {
			return nil, classifyHRESULT(err)
		}
		if sample == nil {
			if flags&mfSourceReaderfEndOfStream != 0 {
				return nil, errors.New("end of stream")
			}
			if timeout > 0 && time.Now().After(deadline) {
				return nil, fmt.Errorf("no frame within %s, flags: 0x%x", timeout, flags)
			}
			continue
		}

		data, err := sampleBytes(sample)
		sample.Release()
		if err != nil {
			return nil, err
		}
		return &Frame{
			Data:   data,
			Format: d.current.fourcc,
			Width:  d.current.width,
			Height: d.current.height,
		}, nil
	}
}

func sampleBytes(sample *imfSample) ([]byte, error) {
	buffer, err := sample.ConvertToContiguousBuffer()
	if err != nil {
		return nil, err
	}
	defer buffer.Release()
	return buffer.Bytes()
}

func (d *mfDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if d.reader != nil {
		d.reader.Release()
		d.reader = nil
	}
	if d.cameraCtrl != nil {
		d.cameraCtrl.Release()
		d.cameraCtrl = nil
	}
	if d.source != nil {
		d.source.Shutdown()
		d.source.Release()
		d.source = nil
	}
	return nil
}
