package modbus

import "fmt"

// FunctionCode describes a Modbus function code.
type FunctionCode uint8

// Function code constants decoded by this package.
const (
	FunctionReadCoilStatus          FunctionCode = 1
	FunctionReadInputStatus         FunctionCode = 2
	FunctionReadHoldingRegisters    FunctionCode = 3
	FunctionReadInputRegisters      FunctionCode = 4
	FunctionForceSingleCoil         FunctionCode = 5
	FunctionPresetSingleRegister    FunctionCode = 6
	FunctionDiagnostics             FunctionCode = 8
	FunctionFetchEventCounter       FunctionCode = 11
	FunctionFetchEventLog           FunctionCode = 12
	FunctionForceMultipleCoils      FunctionCode = 15
	FunctionPresetMultipleRegisters FunctionCode = 16
	FunctionReportSlaveID           FunctionCode = 17
)

// FunctionError is the bit in the function code which marks an exception
// response.
const FunctionError FunctionCode = 0x80

var functionNames = map[FunctionCode]string{
	FunctionReadCoilStatus:          "Read Coil Status",
	FunctionReadInputStatus:         "Read Input Status",
	FunctionReadHoldingRegisters:    "Read Holding Register",
	FunctionReadInputRegisters:      "Read Input Register",
	FunctionForceSingleCoil:         "Force Single Coil",
	FunctionPresetSingleRegister:    "Preset Single Register",
	FunctionDiagnostics:             "Diagnostics",
	FunctionFetchEventCounter:       "Fetch Communication Event Counter",
	FunctionFetchEventLog:           "Fetch Communication Event Log",
	FunctionForceMultipleCoils:      "Force Multiple Coils",
	FunctionPresetMultipleRegisters: "Preset Multiple Registers",
	FunctionReportSlaveID:           "Report Slave ID",
}

// Known reports whether fc is one of the decoded function codes.
func (fc FunctionCode) Known() bool {
	_, ok := functionNames[fc]
	return ok
}

// IsError determines whether this function code is from an exception
// response.
func (fc FunctionCode) IsError() bool {
	return fc&FunctionError != 0
}

// Base returns the function code with the exception bit cleared.
func (fc FunctionCode) Base() FunctionCode {
	return fc &^ FunctionError
}

func (fc FunctionCode) String() string {
	if s, ok := functionNames[fc]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Function %d", uint8(fc))
}
