package models

import (
	"database/sql/driver"
	"fmt"
)

// Attendance holds one flag per program day, Thursday first. It is a value
// type: transitions return a new record instead of mutating the receiver.
type Attendance [CycleLength]bool

// Count returns the number of attended days.
func (a Attendance) Count() int {
	n := 0
	for _, day := range a {
		if day {
			n++
		}
	}
	return n
}

// Full reports whether every day was attended.
func (a Attendance) Full() bool {
	return a.Count() == CycleLength
}

// Contiguous reports whether attended days form an unbroken prefix.
func (a Attendance) Contiguous() bool {
	for i := 1; i < CycleLength; i++ {
		if a[i] && !a[i-1] {
			return false
		}
	}
	return true
}

// Bits encodes the record as a bitmask, day 0 in the lowest bit.
func (a Attendance) Bits() int64 {
	var bits int64
	for i, day := range a {
		if day {
			bits |= 1 << i
		}
	}
	return bits
}

// AttendanceFromBits decodes a bitmask produced by Bits.
func AttendanceFromBits(bits int64) (Attendance, error) {
	if bits < 0 || bits >= 1<<CycleLength {
		return Attendance{}, fmt.Errorf("attendance bitmask %d out of range", bits)
	}
	var a Attendance
	for i := range a {
		a[i] = bits&(1<<i) != 0
	}
	return a, nil
}

// Value stores the record as an integer bitmask.
func (a Attendance) Value() (driver.Value, error) {
	return a.Bits(), nil
}

// Scan decodes the integer bitmask column.
func (a *Attendance) Scan(value interface{}) error {
	var bits int64
	switch v := value.(type) {
	case nil:
		*a = Attendance{}
		return nil
	case int64:
		bits = v
	case int32:
		bits = int64(v)
	case []byte:
		if _, err := fmt.Sscan(string(v), &bits); err != nil {
			return fmt.Errorf("scan attendance: %w", err)
		}
	default:
		return fmt.Errorf("unsupported type %T for Attendance", value)
	}
	decoded, err := AttendanceFromBits(bits)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}
