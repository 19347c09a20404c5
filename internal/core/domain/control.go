package domain

import "fmt"

// DeviceMagic is the command namespace byte registered by this device,
// carried in the high byte of every CommandCode.
const DeviceMagic byte = 'q'

// MaxCommandNumber is the highest command number in the device's
// registered range. Codes with a number above it are rejected even when
// the magic matches.
const MaxCommandNumber = 1

// CommandCode identifies a control operation: the device magic in the
// high byte and the command number in the low byte.
type CommandCode uint16

// NewCommandCode builds a CommandCode from a magic byte and a command number.
func NewCommandCode(magic byte, nr uint8) CommandCode {
	return CommandCode(uint16(magic)<<8 | uint16(nr))
}

// Magic returns the namespace byte of the code.
func (c CommandCode) Magic() byte {
	return byte(c >> 8)
}

// Number returns the command number of the code.
func (c CommandCode) Number() uint8 {
	return uint8(c)
}

// String implements fmt.Stringer.
func (c CommandCode) String() string {
	return fmt.Sprintf("%c/%d", c.Magic(), c.Number())
}

// CmdSetDelimiters replaces a session's delimiter set wholesale.
var CmdSetDelimiters = NewCommandCode(DeviceMagic, 0)

// ValidateCommand checks that code belongs to the device's registered
// magic and command-number range. It does not check that the number is
// actually implemented; dispatch does that.
func ValidateCommand(code CommandCode) error {
	if code.Magic() != DeviceMagic {
		return ErrUnsupportedCommand.WithDetails(fmt.Sprintf("magic %q is not registered to this device", code.Magic()))
	}
	if code.Number() > MaxCommandNumber {
		return ErrUnsupportedCommand.WithDetails(fmt.Sprintf("command number %d exceeds range %d", code.Number(), MaxCommandNumber))
	}
	return nil
}
