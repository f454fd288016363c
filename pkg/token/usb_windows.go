//go:build windows

package token

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// usbStrings returns the SetupAPI manufacturer and device description of the
// Ports class device whose PortName is portName.
func usbStrings(portName string) (manufacturer, product string) {
	guids, err := windows.SetupDiClassGuidsFromNameEx("Ports", "")
	if err != nil {
		log.Debugf("failed to resolve Ports device class: %v", err)
		return "", ""
	}

	for i := range guids {
		devices, err := windows.SetupDiGetClassDevsEx(&guids[i], "", 0, windows.DIGCF_PRESENT, 0, "")
		if err != nil {
			continue
		}
		manufacturer, product, found := findPort(devices, portName)
		devices.Close()
		if found {
			return manufacturer, product
		}
	}
	return "", ""
}

func findPort(devices windows.DevInfo, portName string) (manufacturer, product string, found bool) {
	for i := 0; ; i++ {
		data, err := devices.EnumDeviceInfo(i)
		if err != nil {
			// ERROR_NO_MORE_ITEMS ends the set
			return "", "", false
		}
		if !strings.EqualFold(devicePortName(devices, data), portName) {
			continue
		}
		return registryString(devices, data, windows.SPDRP_MFG),
			registryString(devices, data, windows.SPDRP_DEVICEDESC), true
	}
}

func devicePortName(devices windows.DevInfo, data *windows.DevInfoData) string {
	h, err := devices.OpenDevRegKey(data, windows.DICS_FLAG_GLOBAL, 0, windows.DIREG_DEV, windows.KEY_READ)
	if err != nil {
		return ""
	}
	key := registry.Key(h)
	defer key.Close()

	name, _, err := key.GetStringValue("PortName")
	if err != nil {
		return ""
	}
	return name
}

func registryString(devices windows.DevInfo, data *windows.DevInfoData, property windows.SPDRP) string {
	value, err := devices.DeviceRegistryProperty(data, property)
	if err != nil {
		return ""
	}
	s, _ := value.(string)
	return s
}
