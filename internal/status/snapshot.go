package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
	PendingCount   uint16
	PublishErrors  uint16
}

// Live returns the live slots in slot order.
func (s Snapshot) Live() [LiveSlots]uint16 {
	return [LiveSlots]uint16{
		SlotHealthCode:     s.Health,
		SlotLastErrorCode:  s.LastErrorCode,
		SlotSecondsInError: s.SecondsInError,
		SlotPendingCount:   s.PendingCount,
		SlotPublishErrors:  s.PublishErrors,
	}
}

// Saturate clamps a count into a counter slot.
func Saturate(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > CounterMax {
		return CounterMax
	}
	return uint16(n)
}
