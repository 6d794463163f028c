package camgrab

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Media Foundation GUIDs
var (
	mfDevSourceAttributeSourceType         = windows.GUID{0xc60ac5fe, 0x252a, 0x478f, [8]byte{0xa0, 0xef, 0xbc, 0x8f, 0xa5, 0xf7, 0xca, 0xd3}}
	mfDevSourceAttributeSourceTypeVidcap   = windows.GUID{0x8ac3587a, 0x4ae7, 0x42d8, [8]byte{0x99, 0xe0, 0x0a, 0x60, 0x13, 0xee, 0xf9, 0x0f}}
	mfDevSourceAttributeSourceTypeAudcap   = windows.GUID{0x14dd9a1c, 0x7cff, 0x41be, [8]byte{0xb1, 0xb9, 0xba, 0x1a, 0xc6, 0xec, 0xb5, 0x71}}
	mfDevSourceAttributeFriendlyName       = windows.GUID{0x60d0e559, 0x52f8, 0x4fa2, [8]byte{0xbb, 0xce, 0xac, 0xdb, 0x34, 0xa8, 0xec, 0x01}}
	mfDevSourceAttributeVidcapSymbolicLink = windows.GUID{0x58f0aad8, 0x22bf, 0x4f8a, [8]byte{0xbb, 0x3d, 0xd2, 0xc4, 0x97, 0x8c, 0x6e, 0x2f}}
	mfDevSourceAttributeAudcapEndpointID   = windows.GUID{0x30da9258, 0xfeb9, 0x47a7, [8]byte{0xa4, 0x53, 0x76, 0x3a, 0x7a, 0x8e, 0x1c, 0x5f}}
	mfMTSubtype                            = windows.GUID{0xf7e34c9a, 0x42e8, 0x4714, [8]byte{0xb7, 0x4b, 0xcb, 0x29, 0xd7, 0x2c, 0x35, 0xe5}}
	mfMTFrameSize                          = windows.GUID{0x1652c33d, 0xd6b2, 0x4012, [8]byte{0xb8, 0x34, 0x72, 0x03, 0x08, 0x49, 0xa3, 0x7d}}
	iidIMFMediaSource                      = windows.GUID{0x279a808d, 0xaec7, 0x40c8, [8]byte{0x9c, 0x6b, 0xa6, 0xb4, 0x92, 0xc7, 0x8a, 0x66}}
	iidIAMCameraControl                    = windows.GUID{0xc6e13370, 0x30ac, 0x11d0, [8]byte{0xa1, 0x8c, 0x00, 0xa0, 0xc9, 0x11, 0x89, 0x56}}
)

const (
	mfSourceReaderFirstVideoStream = 0xFFFFFFFC

	mfSourceReaderfEndOfStream = 0x00000002

	cameraControlFocus       = 6
	cameraControlFlagsAuto   = 0x0001
	cameraControlFlagsManual = 0x0002

	mfVersion           = 0x00020070
	coinitMultithreaded = 0x0

	// HRESULT_FROM_WIN32(ERROR_SHARING_VIOLATION) and
	// MF_E_VIDEO_RECORDING_DEVICE_INVALIDATED/LOCKED.
	hrSharingViolation = 0x80070020
	hrDeviceLocked     = 0xC00D3EA3
	hrDeviceInvalid    = 0xC00D3EA2
)

var (
	modmfplat      = windows.NewLazySystemDLL("mfplat.dll")
	modmfreadwrite = windows.NewLazySystemDLL("mfreadwrite.dll")
	modmf          = windows.NewLazySystemDLL("mf.dll")
	modole32       = windows.NewLazySystemDLL("ole32.dll")

	procMFStartup                           = modmfplat.NewProc("MFStartup")
	procMFEnumDeviceSources                 = modmf.NewProc("MFEnumDeviceSources")
	procMFCreateSourceReaderFromMediaSource = modmfreadwrite.NewProc("MFCreateSourceReaderFromMediaSource")
	procMFCreateAttributes                  = modmfplat.NewProc("MFCreateAttributes")
	procCoInitializeEx                      = modole32.NewProc("CoInitializeEx")
	procCoTaskMemFree                       = modole32.NewProc("CoTaskMemFree")
)

// hresultError is a failed COM call.
type hresultError struct {
	call string
	hr   uintptr
}

func (e *hresultError) Error() string {
	return fmt.Sprintf("%s failed: 0x%08x", e.call, uint32(e.hr))
}

func hresult(call string, hr uintptr) error {
	if hr == 0 {
		return nil
	}
	return &hresultError{call: call, hr: hr}
}

// comObject is what every COM interface pointer points at: a pointer to the
// interface's method table. Methods are called by their slot in that table,
// counting the three IUnknown methods.
type comObject struct {
	vtbl unsafe.Pointer
}

// IUnknown slots.
const (
	slotQueryInterface = 0
	slotRelease        = 2
)

func (o *comObject) call(slot int, args ...uintptr) uintptr {
	fn := *(*uintptr)(unsafe.Add(o.vtbl, uintptr(slot)*unsafe.Sizeof(uintptr(0))))
	hr, _, _ := syscall.SyscallN(fn, append([]uintptr{uintptr(unsafe.Pointer(o))}, args...)...)
	return hr
}

func (o *comObject) Release() {
	if o != nil && o.vtbl != nil {
		o.call(slotRelease)
	}
}

func (o *comObject) QueryInterface(iid *windows.GUID) (uintptr, error) {
	var obj uintptr
	hr := o.call(slotQueryInterface, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&obj)))
	return obj, hresult("QueryInterface", hr)
}

// IMFAttributes slots. IMFActivate, IMFMediaType and IMFSample extend it.
const (
	slotGetUINT64       = 8
	slotGetGUID         = 10
	slotGetStringLength = 11
	slotGetString       = 12
	slotSetGUID         = 24
)

type imfAttributes struct{ comObject }

func (a *imfAttributes) SetGUID(key, value *windows.GUID) error {
	return hresult("SetGUID", a.call(slotSetGUID,
		uintptr(unsafe.Pointer(key)), uintptr(unsafe.Pointer(value))))
}

func (a *imfAttributes) GetGUID(key *windows.GUID) (windows.GUID, error) {
	var g windows.GUID
	hr := a.call(slotGetGUID, uintptr(unsafe.Pointer(key)), uintptr(unsafe.Pointer(&g)))
	return g, hresult("GetGUID", hr)
}

func (a *imfAttributes) GetUINT64(key *windows.GUID) (uint64, error) {
	var v uint64
	hr := a.call(slotGetUINT64, uintptr(unsafe.Pointer(key)), uintptr(unsafe.Pointer(&v)))
	return v, hresult("GetUINT64", hr)
}

// GetString reads a UTF-16 string attribute.
func (a *imfAttributes) GetString(key *windows.GUID) (string, error) {
	var n uint32
	hr := a.call(slotGetStringLength, uintptr(unsafe.Pointer(key)), uintptr(unsafe.Pointer(&n)))
	if err := hresult("GetStringLength", hr); err != nil {
		return "", err
	}
	buf := make([]uint16, n+1)
	hr = a.call(slotGetString, uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), 0)
	if err := hresult("GetString", hr); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf), nil
}

// IMFActivate
const slotActivateObject = 33

type imfActivate struct{ imfAttributes }

func (a *imfActivate) ActivateObject(iid *windows.GUID) (uintptr, error) {
	var obj uintptr
	hr := a.call(slotActivateObject, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&obj)))
	return obj, hresult("ActivateObject", hr)
}

// IMFMediaSource
const slotSourceShutdown = 12

type imfMediaSource struct{ comObject }

func (s *imfMediaSource) Shutdown() {
	s.call(slotSourceShutdown)
}

// IMFSourceReader
const (
	slotGetNativeMediaType  = 5
	slotSetCurrentMediaType = 7
	slotReadSample          = 9
)

type imfSourceReader struct{ comObject }

func (r *imfSourceReader) GetNativeMediaType(stream, index uint32) (*imfMediaType, error) {
	var mt *imfMediaType
	hr := r.call(slotGetNativeMediaType, uintptr(stream), uintptr(index), uintptr(unsafe.Pointer(&mt)))
	return mt, hresult("GetNativeMediaType", hr)
}

func (r *imfSourceReader) SetCurrentMediaType(stream uint32, mt *imfMediaType) error {
	hr := r.call(slotSetCurrentMediaType, uintptr(stream), 0, uintptr(unsafe.Pointer(mt)))
	return hresult("SetCurrentMediaType", hr)
}

// ReadSample reads synchronously. The sample is nil on stream ticks and at the
// end of the stream.
func (r *imfSourceReader) ReadSample(stream uint32) (uint32, *imfSample, error) {
	var (
		actual, flags uint32
		timestamp     int64
		sample        *imfSample
	)
	hr := r.call(slotReadSample, uintptr(stream), 0,
		uintptr(unsafe.Pointer(&actual)),
		uintptr(unsafe.Pointer(&flags)),
		uintptr(unsafe.Pointer(&timestamp)),
		uintptr(unsafe.Pointer(&sample)))
	return flags, sample, hresult("ReadSample", hr)
}

type imfMediaType struct{ imfAttributes }

// IMFSample
const slotConvertToContiguousBuffer = 41

type imfSample struct{ imfAttributes }

func (s *imfSample) ConvertToContiguousBuffer() (*imfMediaBuffer, error) {
	var buf *imfMediaBuffer
	hr := s.call(slotConvertToContiguousBuffer, uintptr(unsafe.Pointer(&buf)))
	return buf, hresult("ConvertToContiguousBuffer", hr)
}

// IMFMediaBuffer
const (
	slotLock   = 3
	slotUnlock = 4
)

type imfMediaBuffer struct{ comObject }

// Bytes locks the buffer and returns a copy of its current contents.
func (b *imfMediaBuffer) Bytes() ([]byte, error) {
	var (
		ptr            uintptr
		maxLen, curLen uint32
	)
	hr := b.call(slotLock, uintptr(unsafe.Pointer(&ptr)),
		uintptr(unsafe.Pointer(&maxLen)), uintptr(unsafe.Pointer(&curLen)))
	if err := hresult("Lock", hr); err != nil {
		return nil, err
	}
	defer b.call(slotUnlock)
	return append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(ptr)), curLen)...), nil
}

// IAMCameraControl
const (
	slotCameraSet = 4
	slotCameraGet = 5
)

type iamCameraControl struct{ comObject }

func (c *iamCameraControl) Get(property int32) (value, flags int32, err error) {
	hr := c.call(slotCameraGet, uintptr(property),
		uintptr(unsafe.Pointer(&value)), uintptr(unsafe.Pointer(&flags)))
	return value, flags, hresult("IAMCameraControl.Get", hr)
}

func (c *iamCameraControl) Set(property, value, flags int32) error {
	return hresult("IAMCameraControl.Set", c.call(slotCameraSet,
		uintptr(property), uintptr(value), uintptr(flags)))
}

var (
	mfOnce sync.Once
	mfErr  error
)

// mfStartup initializes COM and Media Foundation once per process. Both stay
// initialized until exit.
func mfStartup() error {
	mfOnce.Do(func() {
		hr, _, _ := syscall.SyscallN(procCoInitializeEx.Addr(), 0, coinitMultithreaded)
		if hr != 0 && hr != 1 { // S_OK or S_FALSE (already initialized)
			mfErr = hresult("CoInitializeEx", hr)
			return
		}
		hr, _, _ = syscall.SyscallN(procMFStartup.Addr(), mfVersion, 0)
		mfErr = hresult("MFStartup", hr)
	})
	return mfErr
}

func mfCreateAttributes(count uint32) (*imfAttributes, error) {
	var attrs *imfAttributes
	hr, _, _ := syscall.SyscallN(procMFCreateAttributes.Addr(),
		uintptr(unsafe.Pointer(&attrs)),
		uintptr(count))
	return attrs, hresult("MFCreateAttributes", hr)
}

// mfEnumDeviceSources returns the activation objects for every device of the
// given source type. The caller must Release each of them.
func mfEnumDeviceSources(sourceType *windows.GUID) ([]*imfActivate, error) {
	if err := mfStartup(); err != nil {
		return nil, err
	}

	attrs, err := mfCreateAttributes(1)
	if err != nil {
		return nil, err
	}
	defer attrs.Release()

	if err := attrs.SetGUID(&mfDevSourceAttributeSourceType, sourceType); err != nil {
		return nil, err
	}

	var devices **imfActivate
	var count uint32
	hr, _, _ := syscall.SyscallN(procMFEnumDeviceSources.Addr(),
		uintptr(unsafe.Pointer(attrs)),
		uintptr(unsafe.Pointer(&devices)),
		uintptr(unsafe.Pointer(&count)))
	if err := hresult("MFEnumDeviceSources", hr); err != nil {
		return nil, err
	}
	if devices == nil {
		return nil, nil
	}
	defer syscall.SyscallN(procCoTaskMemFree.Addr(), uintptr(unsafe.Pointer(devices)))

	return append([]*imfActivate(nil), unsafe.Slice(devices, count)...), nil
}

func mfCreateSourceReader(source *imfMediaSource) (*imfSourceReader, error) {
	var reader *imfSourceReader
	hr, _, _ := syscall.SyscallN(procMFCreateSourceReaderFromMediaSource.Addr(),
		uintptr(unsafe.Pointer(source)),
		0,
		uintptr(unsafe.Pointer(&reader)))
	return reader, hresult("MFCreateSourceReaderFromMediaSource", hr)
}
