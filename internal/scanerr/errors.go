// Package scanerr defines the tagged error taxonomy shared by every
// protocol layer of the scanner (transport, ENIP framing, CIP), kept in
// its own package so the framing and request/response layers can both
// construct these errors without an import cycle between them.
package scanerr

import "fmt"

// Kind identifies the taxonomy of a scanner error, independent of any
// particular operation.
type Kind int

const (
	// KindInvalidArgument means a null or out-of-range input was detected
	// before any I/O was attempted.
	KindInvalidArgument Kind = iota
	// KindNotInitialized means an operation was attempted before the
	// scanner's Init was called.
	KindNotInitialized
	// KindTransportError means a DNS/connect/send/recv failure occurred
	// at the socket layer.
	KindTransportError
	// KindTimeout means the caller's operation timeout elapsed.
	KindTimeout
	// KindOutOfMemory means a request or response buffer could not be
	// allocated.
	KindOutOfMemory
	// KindProtocolError means the reply was well-formed at the transport
	// layer but wrong at the ENIP/CPF layer.
	KindProtocolError
	// KindCIPStatus means the CIP reply carried a nonzero general status.
	KindCIPStatus
	// KindUnsupportedType means the data-type dispatch table has no
	// entry for the requested code.
	KindUnsupportedType
	// KindBufferUnderrun means a response was shorter than the fixed
	// width a parser required.
	KindBufferUnderrun
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotInitialized:
		return "NotInitialized"
	case KindTransportError:
		return "TransportError"
	case KindTimeout:
		return "Timeout"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindProtocolError:
		return "ProtocolError"
	case KindCIPStatus:
		return "CipStatus"
	case KindUnsupportedType:
		return "UnsupportedType"
	case KindBufferUnderrun:
		return "BufferUnderrun"
	default:
		return "Unknown"
	}
}

// Error is the tagged sum the scanner returns for every failure: a Kind,
// an optional CIP general-status Code (populated only for KindCIPStatus),
// and a human-readable Message. It wraps an underlying cause where one
// exists so errors.Is/errors.As keep working against the transport or
// stdlib error beneath it.
type Error struct {
	Kind    Kind
	Code    uint8
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Kind == KindCIPStatus {
		return fmt.Sprintf("%s: 0x%02X %s", e.Kind, e.Code, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError constructs a plain tagged error with no wrapped cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs a tagged error around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewStatusError constructs a KindCIPStatus error for the given general
// status byte, naming it from the fixed status table.
func NewStatusError(status uint8) *Error {
	return &Error{Kind: KindCIPStatus, Code: status, Message: StatusName(status)}
}

// General CIP status codes, 0x00-0x2B plus the vendor-extension 0x81
// used by Motoman controllers for invalid instance/attribute.
const (
	StatusSuccess                        uint8 = 0x00
	StatusConnectionFailure              uint8 = 0x01
	StatusResourceUnavailable            uint8 = 0x02
	StatusInvalidParameter                uint8 = 0x03
	StatusPathSegmentError                uint8 = 0x04
	StatusPathDestinationUnknown          uint8 = 0x05
	StatusPartialTransfer                 uint8 = 0x06
	StatusConnectionLost                  uint8 = 0x07
	StatusServiceNotSupported              uint8 = 0x08
	StatusInvalidAttributeValue            uint8 = 0x09
	StatusAttributeListError               uint8 = 0x0A
	StatusAlreadyInRequestedMode           uint8 = 0x0B
	StatusObjectStateConflict              uint8 = 0x0C
	StatusObjectAlreadyExists              uint8 = 0x0D
	StatusAttributeNotSettable             uint8 = 0x0E
	StatusPrivilegeViolation               uint8 = 0x0F
	StatusDeviceStateConflict              uint8 = 0x10
	StatusReplyDataTooLarge                uint8 = 0x11
	StatusFragmentationOfPrimitive         uint8 = 0x12
	StatusNotEnoughData                    uint8 = 0x13
	StatusAttributeNotSupported            uint8 = 0x14
	StatusTooMuchData                      uint8 = 0x15
	StatusObjectDoesNotExist               uint8 = 0x16
	StatusServiceFragmentationError        uint8 = 0x17
	StatusNoStoredAttributeData            uint8 = 0x18
	StatusStoreOperationFailure            uint8 = 0x19
	StatusRoutingFailureRequestTooLarge    uint8 = 0x1A
	StatusRoutingFailureResponseTooLarge   uint8 = 0x1B
	StatusMissingAttributeListEntry        uint8 = 0x1C
	StatusInvalidAttributeValueList        uint8 = 0x1D
	StatusEmbeddedServiceError             uint8 = 0x1E
	StatusVendorSpecificError              uint8 = 0x1F
	StatusInvalidParameter2                uint8 = 0x20
	StatusWriteOnceValueAlreadyWritten     uint8 = 0x21
	StatusInvalidReplyReceived             uint8 = 0x22
	StatusBufferOverflow                   uint8 = 0x23
	StatusMessageFormatError               uint8 = 0x24
	StatusKeyFailureInPath                 uint8 = 0x25
	StatusPathSizeInvalid                  uint8 = 0x26
	StatusUnexpectedAttributeInList        uint8 = 0x27
	StatusInvalidMemberID                  uint8 = 0x28
	StatusMemberNotSettable                uint8 = 0x29
	StatusGroup2OnlyServerGeneralFailure    uint8 = 0x2A
	StatusUnknownModNetworkError            uint8 = 0x2B
	// StatusVendorInvalidInstanceOrAttribute is a vendor-extension status
	// Motoman controllers use for an invalid class/instance/attribute
	// combination outside the CIP-standard 0x00-0x2B range.
	StatusVendorInvalidInstanceOrAttribute uint8 = 0x81
)

var statusNames = map[uint8]string{
	StatusSuccess:                         "Success",
	StatusConnectionFailure:                "Connection failure",
	StatusResourceUnavailable:              "Resource unavailable",
	StatusInvalidParameter:                 "Invalid parameter value",
	StatusPathSegmentError:                 "Path segment error",
	StatusPathDestinationUnknown:           "Path destination unknown",
	StatusPartialTransfer:                  "Partial transfer",
	StatusConnectionLost:                   "Connection lost",
	StatusServiceNotSupported:              "Service not supported",
	StatusInvalidAttributeValue:            "Invalid attribute value",
	StatusAttributeListError:               "Attribute list error",
	StatusAlreadyInRequestedMode:           "Already in requested mode or state",
	StatusObjectStateConflict:              "Object state conflict",
	StatusObjectAlreadyExists:              "Object already exists",
	StatusAttributeNotSettable:             "Attribute not settable",
	StatusPrivilegeViolation:               "Privilege violation",
	StatusDeviceStateConflict:              "Device state conflict",
	StatusReplyDataTooLarge:                "Reply data too large",
	StatusFragmentationOfPrimitive:         "Fragmentation of a primitive value",
	StatusNotEnoughData:                    "Not enough data",
	StatusAttributeNotSupported:            "Attribute not supported",
	StatusTooMuchData:                      "Too much data",
	StatusObjectDoesNotExist:               "Object does not exist",
	StatusServiceFragmentationError:        "Service fragmentation sequence not in progress",
	StatusNoStoredAttributeData:            "No stored attribute data",
	StatusStoreOperationFailure:            "Store operation failure",
	StatusRoutingFailureRequestTooLarge:    "Routing failure, request packet too large",
	StatusRoutingFailureResponseTooLarge:   "Routing failure, response packet too large",
	StatusMissingAttributeListEntry:        "Missing attribute list entry data",
	StatusInvalidAttributeValueList:        "Invalid attribute value list",
	StatusEmbeddedServiceError:             "Embedded service error",
	StatusVendorSpecificError:              "Vendor specific error",
	StatusInvalidParameter2:                "Invalid parameter",
	StatusWriteOnceValueAlreadyWritten:     "Write-once value or medium already written",
	StatusInvalidReplyReceived:             "Invalid reply received",
	StatusBufferOverflow:                   "Buffer overflow",
	StatusMessageFormatError:               "Message format error",
	StatusKeyFailureInPath:                 "Key failure in path",
	StatusPathSizeInvalid:                  "Path size invalid",
	StatusUnexpectedAttributeInList:        "Unexpected attribute in list",
	StatusInvalidMemberID:                  "Invalid member ID",
	StatusMemberNotSettable:                "Member not settable",
	StatusGroup2OnlyServerGeneralFailure:   "Group 2 only server general failure",
	StatusUnknownModNetworkError:           "Unknown Modbus/network error",
	StatusVendorInvalidInstanceOrAttribute: "Vendor specific: invalid instance or attribute",
}

// StatusName maps a CIP general status byte to its human-readable name.
// Unrecognized codes return a generic "Unknown CIP status" description
// rather than failing, since the caller still needs the numeric code.
func StatusName(status uint8) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "Unknown CIP status"
}
