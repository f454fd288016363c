//go:build darwin

package token

// #cgo LDFLAGS: -framework CoreFoundation -framework IOKit
// #include <IOKit/IOKitLib.h>
// #include <CoreFoundation/CoreFoundation.h>
// #include <stdlib.h>
// #include <string.h>
//
// static int copyString(CFTypeRef value, char *buf, CFIndex size) {
//	if (value == NULL) {
//		return 0;
//	}
//	int ok = CFGetTypeID(value) == CFStringGetTypeID() &&
//		CFStringGetCString((CFStringRef)value, buf, size, kCFStringEncodingUTF8);
//	CFRelease(value);
//	return ok;
// }
//
// static CFTypeRef searchParents(io_registry_entry_t entry, const char *key) {
//	CFStringRef k = CFStringCreateWithCString(kCFAllocatorDefault, key, kCFStringEncodingUTF8);
//	CFTypeRef value = IORegistryEntrySearchCFProperty(entry, kIOServicePlane, k, kCFAllocatorDefault,
//		kIORegistryIterateRecursively | kIORegistryIterateParents);
//	CFRelease(k);
//	return value;
// }
//
// static int usbStrings(const char *callout, char *manufacturer, char *product, CFIndex size) {
//	io_iterator_t iter;
//	if (IOServiceGetMatchingServices(MACH_PORT_NULL, IOServiceMatching("IOSerialBSDClient"), &iter) != KERN_SUCCESS) {
//		return 0;
//	}
//	int found = 0;
//	io_object_t service;
//	char name[1024];
//	while (!found && (service = IOIteratorNext(iter)) != 0) {
//		CFTypeRef path = IORegistryEntryCreateCFProperty(service, CFSTR("IOCalloutDevice"), kCFAllocatorDefault, 0);
//		if (copyString(path, name, sizeof(name)) && strcmp(name, callout) == 0) {
//			found = 1;
//			copyString(searchParents(service, "USB Vendor Name"), manufacturer, size);
//			copyString(searchParents(service, "USB Product Name"), product, size);
//		}
//		IOObjectRelease(service);
//	}
//	IOObjectRelease(iter);
//	return found;
// }
import "C"

import (
	"unsafe"
)

const usbStringSize = 256

// usbStrings reads the USB Vendor Name and USB Product Name of the device
// above the IOSerialBSDClient whose callout device is portName.
func usbStrings(portName string) (manufacturer, product string) {
	callout := C.CString(portName)
	defer C.free(unsafe.Pointer(callout))

	var m, p [usbStringSize]C.char
	if C.usbStrings(callout, &m[0], &p[0], usbStringSize) == 0 {
		return "", ""
	}
	return C.GoString(&m[0]), C.GoString(&p[0])
}
