package picoborg

import "math"

// DutyMax is the full-scale PWM duty.
const DutyMax = 255

// ClampPower limits power to [-1, 1]. NaN becomes 0.
func ClampPower(power float64) float64 {
	switch {
	case math.IsNaN(power):
		return 0
	case power > 1:
		return 1
	case power < -1:
		return -1
	}
	return power
}

// PowerToDuty converts the magnitude of power to a PWM duty.
// The sign is not encoded, callers select the direction by opcode.
func PowerToDuty(power float64) byte {
	return byte(math.Round(DutyMax * math.Abs(ClampPower(power))))
}

// DutyToPower converts a direction code and duty back to a signed power.
func DutyToPower(dir byte, duty byte) (float64, error) {
	power := float64(duty) / DutyMax
	switch dir {
	case ValueForward.Byte():
		return power, nil
	case ValueReverse.Byte():
		return -power, nil
	}
	return 0, ErrCorruptedData
}

func motorOpcode(power float64, fwd, rev Opcode) Opcode {
	if ClampPower(power) >= 0 {
		return fwd
	}
	return rev
}
