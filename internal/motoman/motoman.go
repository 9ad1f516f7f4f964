// Package motoman addresses Motoman robot controller vendor-specific
// CIP class objects: status, job info, axis/position/deviation/torque
// control-group data, I/O, registers and typed variables, alarms, and
// the fixed-width string variable.
package motoman

import (
	"time"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip/path"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Vendor class IDs (§6.2).
const (
	ClassAlarmCurrent      uint32 = 0x70
	ClassAlarmHistory      uint32 = 0x71
	ClassStatus            uint32 = 0x72
	ClassJobInfo           uint32 = 0x73
	ClassAxisConfig        uint32 = 0x74
	ClassPosition          uint32 = 0x75
	ClassDeviation         uint32 = 0x76
	ClassTorque            uint32 = 0x77
	ClassIO                uint32 = 0x78
	ClassRegister          uint32 = 0x79
	ClassByteVariable      uint32 = 0x7A
	ClassIntVariable       uint32 = 0x7B
	ClassDoubleIntVariable uint32 = 0x7C
	ClassRealVariable      uint32 = 0x7D
	ClassPositionVariable  uint32 = 0x7F
	ClassBasePositionVar   uint32 = 0x80
	ClassExternalAxisVar   uint32 = 0x81
	ClassStringVariable    uint32 = 0x8C
)

const variableAttribute uint32 = 1

// IOInstance computes the Class 0x78 I/O instance for a signal number.
// This rule is left exactly as specified: signals 0..9 map to instance
// 0, and whether instance 0 is a legal read/write target on a given
// controller is for the peer to decide — the facade does not special
// case it.
func IOInstance(signalNumber uint32) uint32 {
	return signalNumber / 10
}

// VariableInstance computes the CIP instance for a Register or typed
// Variable number. When rs022Direct is false (the default), the
// instance is the number plus one; when true, the instance equals the
// number directly. rs022Direct is process-wide state owned by the
// caller (the scanner), not by this package.
func VariableInstance(number uint32, rs022Direct bool) uint32 {
	if rs022Direct {
		return number
	}
	return number + 1
}

// ReadIO reads the raw attribute-1 byte(s) of the I/O instance that
// signalNumber maps to.
func ReadIO(endpoint string, signalNumber uint32, timeout time.Duration, logger *zap.Logger) ([]byte, error) {
	attr := uint32(1)
	pathBytes, pathWords, err := path.InstanceAttribute(ClassIO, IOInstance(signalNumber), &attr)
	if err != nil {
		return nil, cip.Wrap(cip.KindInvalidArgument, "build I/O path", err)
	}
	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeSingle, nil, timeout, logger)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// WriteIO sets the attribute-1 byte(s) of the I/O instance that
// signalNumber maps to. The caller is responsible for only writing to
// the writable signal ranges of §6.3; the facade does not enforce them.
func WriteIO(endpoint string, signalNumber uint32, value []byte, timeout time.Duration, logger *zap.Logger) error {
	attr := uint32(1)
	pathBytes, pathWords, err := path.InstanceAttribute(ClassIO, IOInstance(signalNumber), &attr)
	if err != nil {
		return cip.Wrap(cip.KindInvalidArgument, "build I/O path", err)
	}
	_, err = cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceSetAttributeSingle, value, timeout, logger)
	return err
}

// ReadVariable reads a Register (0x79) or scalar Variable (0x7A-0x7D)
// at attribute 1. Position-family variables (0x7F/0x80/0x81) use
// ReadPositionVariable instead, since they address attribute 0 with
// Get_Attribute_All rather than a single numbered attribute.
func ReadVariable(endpoint string, class uint32, number uint32, rs022Direct bool, timeout time.Duration, logger *zap.Logger) ([]byte, error) {
	attr := variableAttribute
	instance := VariableInstance(number, rs022Direct)
	pathBytes, pathWords, err := path.InstanceAttribute(class, instance, &attr)
	if err != nil {
		return nil, cip.Wrap(cip.KindInvalidArgument, "build variable path", err)
	}
	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeSingle, nil, timeout, logger)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// WriteVariable writes a Register (0x79) or scalar Variable (0x7A-0x7D)
// at attribute 1.
func WriteVariable(endpoint string, class uint32, number uint32, rs022Direct bool, value []byte, timeout time.Duration, logger *zap.Logger) error {
	attr := variableAttribute
	instance := VariableInstance(number, rs022Direct)
	pathBytes, pathWords, err := path.InstanceAttribute(class, instance, &attr)
	if err != nil {
		return cip.Wrap(cip.KindInvalidArgument, "build variable path", err)
	}
	_, err = cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceSetAttributeSingle, value, timeout, logger)
	return err
}

// ReadPositionVariable reads a Position (0x7F), Base Position (0x80), or
// External Axis (0x81) variable with Get_Attribute_All against the
// whole instance — these classes address no single numbered attribute.
func ReadPositionVariable(endpoint string, class uint32, number uint32, rs022Direct bool, timeout time.Duration, logger *zap.Logger) ([]byte, error) {
	instance := VariableInstance(number, rs022Direct)
	pathBytes, pathWords, err := path.InstanceAttribute(class, instance, nil)
	if err != nil {
		return nil, cip.Wrap(cip.KindInvalidArgument, "build position variable path", err)
	}
	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeAll, nil, timeout, logger)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// WritePositionVariable writes a Position (0x7F), Base Position (0x80),
// or External Axis (0x81) variable with Set_Attribute_All.
func WritePositionVariable(endpoint string, class uint32, number uint32, rs022Direct bool, value []byte, timeout time.Duration, logger *zap.Logger) error {
	instance := VariableInstance(number, rs022Direct)
	pathBytes, pathWords, err := path.InstanceAttribute(class, instance, nil)
	if err != nil {
		return cip.Wrap(cip.KindInvalidArgument, "build position variable path", err)
	}
	_, err = cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceSetAttributeAll, value, timeout, logger)
	return err
}

// StringVariableSize is the fixed wire width of a Class 0x8C string
// variable field.
const StringVariableSize = 32

// ReadStringVariable reads the 32-byte fixed field of a string variable
// and returns it NUL-terminated, truncated to at most bufSize-1 bytes of
// text the way the caller's buffer dictates.
func ReadStringVariable(endpoint string, number uint32, rs022Direct bool, bufSize int, timeout time.Duration, logger *zap.Logger) ([]byte, error) {
	raw, err := ReadVariable(endpoint, ClassStringVariable, number, rs022Direct, timeout, logger)
	if err != nil {
		return nil, err
	}
	text := raw
	if n := indexByte(text, 0x00); n >= 0 {
		text = text[:n]
	}
	max := bufSize - 1
	if max < 0 {
		max = 0
	}
	if len(text) > max {
		text = text[:max]
	}
	return append(append([]byte{}, text...), 0x00), nil
}

// WriteStringVariable zero-pads value to the fixed 32-byte field width
// and writes it. It fails rather than silently truncating if value is
// longer than the field can hold.
func WriteStringVariable(endpoint string, number uint32, rs022Direct bool, value []byte, timeout time.Duration, logger *zap.Logger) error {
	if len(value) > StringVariableSize {
		return cip.NewError(cip.KindInvalidArgument, "string variable value exceeds the 32-byte field")
	}
	buf := make([]byte, StringVariableSize)
	copy(buf, value)
	return WriteVariable(endpoint, ClassStringVariable, number, rs022Direct, buf, timeout, logger)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// Alarm is one decoded alarm record, assembled from five sequential
// Get_Attribute_Single reads.
type Alarm struct {
	Code        uint32
	Data        uint32
	DataType    uint32
	DateTime    string
	Description string
}

// ReadAlarm reads attributes 1..5 of the given alarm instance (current,
// Class 0x70, or history, Class 0x71) in sequence. A failure on any
// attribute fails the whole read with that attribute's error; no
// partial alarm record is returned.
func ReadAlarm(endpoint string, class uint32, instance uint32, timeout time.Duration, logger *zap.Logger) (Alarm, error) {
	var alarm Alarm
	for attr := uint32(1); attr <= 5; attr++ {
		a := attr
		pathBytes, pathWords, err := path.InstanceAttribute(class, instance, &a)
		if err != nil {
			return Alarm{}, cip.Wrap(cip.KindInvalidArgument, "build alarm path", err)
		}
		resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeSingle, nil, timeout, logger)
		if err != nil {
			return Alarm{}, err
		}
		switch attr {
		case 1:
			alarm.Code, err = bytecodec.ReadU32(resp.Data, 0)
		case 2:
			alarm.Data, err = bytecodec.ReadU32(resp.Data, 0)
		case 3:
			alarm.DataType, err = bytecodec.ReadU32(resp.Data, 0)
		case 4:
			if len(resp.Data) < 16 {
				err = cip.NewError(cip.KindBufferUnderrun, "alarm datetime shorter than 16 bytes")
			} else {
				alarm.DateTime = trimTrailingNUL(resp.Data[:16])
			}
		case 5:
			if len(resp.Data) < 32 {
				err = cip.NewError(cip.KindBufferUnderrun, "alarm description shorter than 32 bytes")
			} else {
				alarm.Description = trimTrailingNUL(resp.Data[:32])
			}
		}
		if err != nil {
			return Alarm{}, err
		}
	}
	return alarm, nil
}

func trimTrailingNUL(b []byte) string {
	if n := indexByte(b, 0x00); n >= 0 {
		b = b[:n]
	}
	return string(b)
}

// AxisReading is one control-group axis-array reply (AxisConfig,
// Position, Deviation, Torque): up to 8 float32 axis values.
type AxisReading struct {
	Axes      []float32
	AxisCount int
}

// readAxisArray parses an axis-array reply per the short-axis tolerance
// rule (§4.10): a payload shorter than the full 32-byte (8-axis) width
// but still a multiple of 4 populates that many axes and zero-fills the
// rest; fewer than 4 bytes is a hard failure.
func readAxisArray(data []byte) (AxisReading, error) {
	const maxAxes = 8
	if len(data) < 4 {
		return AxisReading{}, cip.NewError(cip.KindBufferUnderrun, "axis reply shorter than one axis")
	}
	if len(data)%4 != 0 {
		return AxisReading{}, cip.NewError(cip.KindProtocolError, "axis reply length not a multiple of 4")
	}
	n := len(data) / 4
	if n > maxAxes {
		n = maxAxes
	}
	out := AxisReading{Axes: make([]float32, maxAxes), AxisCount: n}
	for i := 0; i < n; i++ {
		v, err := bytecodec.ReadF32(data, i*4)
		if err != nil {
			return AxisReading{}, err
		}
		out.Axes[i] = v
	}
	return out, nil
}

// ReadAxisArray reads and parses an AxisConfig/Position/Deviation/Torque
// reply for the given control-group instance.
func ReadAxisArray(endpoint string, class uint32, controlGroup uint32, timeout time.Duration, logger *zap.Logger) (AxisReading, error) {
	pathBytes, pathWords, err := path.InstanceAttribute(class, controlGroup, nil)
	if err != nil {
		return AxisReading{}, cip.Wrap(cip.KindInvalidArgument, "build axis path", err)
	}
	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeAll, nil, timeout, logger)
	if err != nil {
		return AxisReading{}, err
	}
	return readAxisArray(resp.Data)
}

// Status is the decoded Class 0x72 reply: the run mode byte (offset 0),
// a flags byte (offset 1: bit 0 servo on, bit 1 running), and the
// pending alarm code (u32 at offset 4, 0 when none is active), from
// which AlarmPending is derived. No
// authoritative field layout for this class was available; this shape
// is this implementation's resolution of that gap, exercised the same
// way as every other Get_Attribute_All reply.
type Status struct {
	RunMode       uint8
	ServoOn       bool
	Running       bool
	AlarmPending  bool
	PendingAlarm  uint32
}

// ReadStatus reads and parses the Class 0x72 status reply for a control
// group instance.
func ReadStatus(endpoint string, controlGroup uint32, timeout time.Duration, logger *zap.Logger) (Status, error) {
	pathBytes, pathWords, err := path.InstanceAttribute(ClassStatus, controlGroup, nil)
	if err != nil {
		return Status{}, cip.Wrap(cip.KindInvalidArgument, "build status path", err)
	}
	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeAll, nil, timeout, logger)
	if err != nil {
		return Status{}, err
	}
	if len(resp.Data) < 8 {
		return Status{}, cip.NewError(cip.KindBufferUnderrun, "status reply shorter than 8 bytes")
	}
	runMode, _ := bytecodec.ReadU8(resp.Data, 0)
	flags, _ := bytecodec.ReadU8(resp.Data, 1)
	alarmCode, err := bytecodec.ReadU32(resp.Data, 4)
	if err != nil {
		return Status{}, err
	}
	return Status{
		RunMode:      runMode,
		ServoOn:      flags&0x01 != 0,
		Running:      flags&0x02 != 0,
		AlarmPending: alarmCode != 0,
		PendingAlarm: alarmCode,
	}, nil
}

// JobInfo is the decoded Class 0x73 reply: the active job name plus the
// current line and step numbers.
type JobInfo struct {
	JobName string
	Line    uint32
	Step    uint32
}

// ReadJobInfo reads and parses the Class 0x73 job info reply for a
// control group instance.
func ReadJobInfo(endpoint string, controlGroup uint32, timeout time.Duration, logger *zap.Logger) (JobInfo, error) {
	pathBytes, pathWords, err := path.InstanceAttribute(ClassJobInfo, controlGroup, nil)
	if err != nil {
		return JobInfo{}, cip.Wrap(cip.KindInvalidArgument, "build job info path", err)
	}
	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeAll, nil, timeout, logger)
	if err != nil {
		return JobInfo{}, err
	}
	if len(resp.Data) < 40 {
		return JobInfo{}, cip.NewError(cip.KindBufferUnderrun, "job info reply shorter than 40 bytes")
	}
	line, err := bytecodec.ReadU32(resp.Data, 32)
	if err != nil {
		return JobInfo{}, err
	}
	step, err := bytecodec.ReadU32(resp.Data, 36)
	if err != nil {
		return JobInfo{}, err
	}
	return JobInfo{
		JobName: trimTrailingNUL(resp.Data[:32]),
		Line:    line,
		Step:    step,
	}, nil
}

// ReadAlarmGated runs ReadAlarm through breaker, the per-endpoint health
// gate the scanner uses for the Motoman facade's sequential reads
// (alarms and axis arrays are the operations most likely to be run back
// to back against a single dead controller). A nil breaker calls
// ReadAlarm directly.
func ReadAlarmGated(breaker *gobreaker.CircuitBreaker, endpoint string, class uint32, instance uint32, timeout time.Duration, logger *zap.Logger) (Alarm, error) {
	if breaker == nil {
		return ReadAlarm(endpoint, class, instance, timeout, logger)
	}
	result, err := breaker.Execute(func() (interface{}, error) {
		return ReadAlarm(endpoint, class, instance, timeout, logger)
	})
	if err != nil {
		return Alarm{}, err
	}
	return result.(Alarm), nil
}
