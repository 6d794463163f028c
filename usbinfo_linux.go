package camgrab

import (
	"fmt"
	"path/filepath"
	"strconv"

	usb "github.com/kevmo314/go-usb"
)

// usbDevices indexes the host's USB devices by their /dev/bus/usb path.
func usbDevices() (map[string]*USBInfo, error) {
	devices, err := usb.DeviceList()
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]*USBInfo, len(devices))
	for _, dev := range devices {
		info := &USBInfo{
			VendorID:  dev.Descriptor.VendorID,
			ProductID: dev.Descriptor.ProductID,
		}
		if dev.SysfsStrings != nil {
			info.Manufacturer = dev.SysfsStrings.Manufacturer
			info.Product = dev.SysfsStrings.Product
		}
		byPath[dev.Path] = info
	}
	return byPath, nil
}

// usbPath returns the /dev/bus/usb node of the USB device that owns a
// video4linux class directory, or "" when the node is not on USB.
func usbPath(nodeDir string) string {
	iface, err := filepath.EvalSymlinks(filepath.Join(nodeDir, "device"))
	if err != nil {
		return ""
	}
	dev := filepath.Dir(iface)
	bus, err1 := strconv.Atoi(readSysfs(filepath.Join(dev, "busnum")))
	num, err2 := strconv.Atoi(readSysfs(filepath.Join(dev, "devnum")))
	if err1 != nil || err2 != nil {
		return ""
	}
	return fmt.Sprintf("/dev/bus/usb/%03d/%03d", bus, num)
}
