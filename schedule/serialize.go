package schedule

import "github.com/bytedance/sonic"

// MarshalSlots serialises a slot list to JSON.
func MarshalSlots(slots []Slot) ([]byte, error) {
	if slots == nil {
		slots = []Slot{}
	}
	return sonic.Marshal(slots)
}

// UnmarshalSlots deserialises a slot list from JSON.
func UnmarshalSlots(data []byte) ([]Slot, error) {
	var slots []Slot
	if err := sonic.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// MarshalSnapshot serialises a Snapshot to JSON.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return sonic.Marshal(s)
}

// UnmarshalSnapshot deserialises a Snapshot from JSON. A bare slot array is
// accepted too, so exported extraction output can be compared directly.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	trimmed := trimLeft(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		slots, err := UnmarshalSlots(data)
		if err != nil {
			return nil, err
		}
		return &Snapshot{Data: slots}, nil
	}
	var s Snapshot
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarshalDifferences serialises a difference list to JSON.
func MarshalDifferences(diffs []Difference) ([]byte, error) {
	if diffs == nil {
		diffs = []Difference{}
	}
	return sonic.Marshal(diffs)
}

func trimLeft(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\n' || b[0] == '\t' || b[0] == '\r') {
		b = b[1:]
	}
	return b
}
