// Package camgrab enumerates local capture devices and grabs single frames
// from video devices through the platform camera API.
package camgrab

import "fmt"

// Category selects which class of device an enumeration returns.
type Category int

const (
	Video Category = iota
	Audio
)

func (c Category) String() string {
	switch c {
	case Video:
		return "video"
	case Audio:
		return "audio"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// USBInfo identifies the USB device behind a capture node, when there is one.
type USBInfo struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
}

func (u *USBInfo) String() string {
	return fmt.Sprintf("%04x:%04x %s %s", u.VendorID, u.ProductID, u.Manufacturer, u.Product)
}

// Device describes one enumerated device. Index is its position in the
// enumeration that produced it and is only meaningful until the next
// enumeration.
type Device struct {
	Index    int
	Name     string
	Path     string
	Category Category
	USB      *USBInfo
}
