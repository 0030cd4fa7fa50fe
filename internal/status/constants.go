package status

// Device status block layout. The layout is a wire contract shared with
// whatever reads status memory; none of it is configurable.

// SlotsPerDevice is the fixed block size, in registers, of one unit.
// A unit's block starts at status_slot * SlotsPerDevice.
const SlotsPerDevice = 20

// Live slots, rewritten whenever the snapshot changes.
const (
	SlotHealthCode     = 0 // health state, one of the Health* codes
	SlotLastErrorCode  = 1 // code of the most recent failure, 0 when OK
	SlotSecondsInError = 2 // seconds spent outside HealthOK
	SlotPendingCount   = 3 // parameters waiting to be published
	SlotPublishErrors  = 4 // failed attempts summed over pending parameters

	LiveSlots = 5
)

// Slots 5..10 stay zero.
const (
	SlotReservedStart = LiveSlots
	SlotReservedEnd   = 10
)

// The device name fills the tail of the block, two ASCII bytes per slot.
const (
	SlotDeviceNameStart = 11
	SlotDeviceNameSlots = 8
	SlotDeviceNameEnd   = SlotDeviceNameStart + SlotDeviceNameSlots - 1

	DeviceNameMaxChars = 2 * SlotDeviceNameSlots
)

// CounterMax is where every counter slot saturates.
const CounterMax = 65535

// Health codes.
const (
	HealthUnknown  uint16 = 0 // nothing observed yet
	HealthOK       uint16 = 1
	HealthError    uint16 = 2 // the source cannot be polled
	HealthStale    uint16 = 3 // polling works, publishing keeps failing
	HealthDisabled uint16 = 4
)
