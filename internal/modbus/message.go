package modbus

// Message is one decoded Modbus/TCP message.
type Message struct {
	Header    Header
	Direction Direction
	Body      Body
	// Raw is the whole message as carried in the TCP payload.
	Raw []byte
}

// Body is the function specific part of a message. The set of
// implementations is closed; switch on the concrete type.
type Body interface {
	body()
}

// ReadRequest asks for Count coils, inputs or registers starting at
// Reference (functions 1-4).
type ReadRequest struct {
	Reference uint16
	Count     uint16
}

// ReadBitsReply carries coil or input status bits (functions 1, 2).
type ReadBitsReply struct {
	ByteCount uint8
	Data      []byte
}

// ReadRegistersReply carries holding or input registers (functions 3, 4).
type ReadRegistersReply struct {
	ByteCount uint8
	Data      []byte
	Registers []uint16
}

// SingleWrite writes one coil or register (functions 5, 6). The reply
// echoes the request.
type SingleWrite struct {
	Reference uint16
	Value     uint16
}

// Diagnostics is a function 8 request or reply.
type Diagnostics struct {
	SubCode uint16
	Data    uint16
}

// EmptyRequest is a request made of the header only (functions 11, 12, 17).
type EmptyRequest struct{}

// EventCounterReply answers function 11.
type EventCounterReply struct {
	Status     uint16
	EventCount uint16
}

// EventLogReply answers function 12. ByteCount covers the three counters
// and the event bytes.
type EventLogReply struct {
	ByteCount    uint8
	Status       uint16
	EventCount   uint16
	MessageCount uint16
	Events       []byte
}

// WriteMultipleCoilsRequest forces BitCount coils (function 15).
type WriteMultipleCoilsRequest struct {
	Reference uint16
	BitCount  uint16
	ByteCount uint8
	Data      []byte
}

// Value folds Data into one integer, first byte most significant. It
// reports false when Data does not fit in 64 bits.
func (r WriteMultipleCoilsRequest) Value() (uint64, bool) {
	if len(r.Data) > 8 {
		return 0, false
	}
	var v uint64
	for _, b := range r.Data {
		v = v<<8 | uint64(b)
	}
	return v, true
}

// WriteMultipleRegistersRequest presets RegisterCount registers (function 16).
type WriteMultipleRegistersRequest struct {
	Reference     uint16
	RegisterCount uint16
	ByteCount     uint8
	Data          []byte
	Registers     []uint16
}

// WriteMultipleReply acknowledges functions 15 and 16.
type WriteMultipleReply struct {
	Reference uint16
	Count     uint16
}

// ReportSlaveIDReply holds the opaque device description (function 17).
type ReportSlaveIDReply struct {
	Data []byte
}

// ExceptionReply is a reply whose function code has the error bit set.
type ExceptionReply struct {
	Function FunctionCode // with the error bit cleared
	Code     ExceptionCode
}

// Unknown holds the bytes after a function code this package does not decode.
type Unknown struct {
	Data []byte
}

func (ReadRequest) body()                   {}
func (ReadBitsReply) body()                 {}
func (ReadRegistersReply) body()            {}
func (SingleWrite) body()                   {}
func (Diagnostics) body()                   {}
func (EmptyRequest) body()                  {}
func (EventCounterReply) body()             {}
func (EventLogReply) body()                 {}
func (WriteMultipleCoilsRequest) body()     {}
func (WriteMultipleRegistersRequest) body() {}
func (WriteMultipleReply) body()            {}
func (ReportSlaveIDReply) body()            {}
func (ExceptionReply) body()                {}
func (Unknown) body()                       {}
