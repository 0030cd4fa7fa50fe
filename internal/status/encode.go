package status

// Encode converts a Snapshot and a device name into a full device status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot, deviceName string) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	live := s.Live()
	copy(regs, live[:])

	// Reserved slots are left as zero.

	name := EncodeDeviceName(deviceName)
	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], name)

	return regs
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
// Non-printable bytes become '?'.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	for i := 0; i < len(b); i++ {
		c := b[i]
		if c < 0x20 || c > 0x7E {
			c = '?'
		}
		if i%2 == 0 {
			out[i/2] |= uint16(c) << 8
		} else {
			out[i/2] |= uint16(c)
		}
	}

	return out
}
