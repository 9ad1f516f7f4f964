package cip

import "github.com/IamMikeHelsel/enip-scanner/internal/scanerr"

// Kind, Error, and the CIP status vocabulary live in internal/scanerr so
// that internal/enip can raise them too without importing this package
// (internal/cip imports internal/enip to drive the request/response
// engine, so the reverse import would cycle). These aliases let every
// facade keep writing cip.KindX / cip.NewError / cip.StatusName as if
// the taxonomy were defined here.
type Kind = scanerr.Kind

const (
	KindInvalidArgument = scanerr.KindInvalidArgument
	KindNotInitialized  = scanerr.KindNotInitialized
	KindTransportError  = scanerr.KindTransportError
	KindTimeout         = scanerr.KindTimeout
	KindOutOfMemory     = scanerr.KindOutOfMemory
	KindProtocolError   = scanerr.KindProtocolError
	KindCIPStatus       = scanerr.KindCIPStatus
	KindUnsupportedType = scanerr.KindUnsupportedType
	KindBufferUnderrun  = scanerr.KindBufferUnderrun
)

type Error = scanerr.Error

func NewError(kind Kind, message string) *Error { return scanerr.NewError(kind, message) }

func Wrap(kind Kind, message string, cause error) *Error { return scanerr.Wrap(kind, message, cause) }

func NewStatusError(status uint8) *Error { return scanerr.NewStatusError(status) }

func StatusName(status uint8) string { return scanerr.StatusName(status) }

const (
	StatusSuccess                          = scanerr.StatusSuccess
	StatusConnectionFailure                = scanerr.StatusConnectionFailure
	StatusResourceUnavailable              = scanerr.StatusResourceUnavailable
	StatusInvalidParameter                 = scanerr.StatusInvalidParameter
	StatusPathSegmentError                 = scanerr.StatusPathSegmentError
	StatusPathDestinationUnknown           = scanerr.StatusPathDestinationUnknown
	StatusPartialTransfer                  = scanerr.StatusPartialTransfer
	StatusConnectionLost                   = scanerr.StatusConnectionLost
	StatusServiceNotSupported              = scanerr.StatusServiceNotSupported
	StatusInvalidAttributeValue            = scanerr.StatusInvalidAttributeValue
	StatusAttributeListError               = scanerr.StatusAttributeListError
	StatusAlreadyInRequestedMode           = scanerr.StatusAlreadyInRequestedMode
	StatusObjectStateConflict              = scanerr.StatusObjectStateConflict
	StatusObjectAlreadyExists              = scanerr.StatusObjectAlreadyExists
	StatusAttributeNotSettable             = scanerr.StatusAttributeNotSettable
	StatusPrivilegeViolation               = scanerr.StatusPrivilegeViolation
	StatusDeviceStateConflict              = scanerr.StatusDeviceStateConflict
	StatusReplyDataTooLarge                = scanerr.StatusReplyDataTooLarge
	StatusFragmentationOfPrimitive         = scanerr.StatusFragmentationOfPrimitive
	StatusNotEnoughData                    = scanerr.StatusNotEnoughData
	StatusAttributeNotSupported            = scanerr.StatusAttributeNotSupported
	StatusTooMuchData                      = scanerr.StatusTooMuchData
	StatusObjectDoesNotExist               = scanerr.StatusObjectDoesNotExist
	StatusServiceFragmentationError        = scanerr.StatusServiceFragmentationError
	StatusNoStoredAttributeData            = scanerr.StatusNoStoredAttributeData
	StatusStoreOperationFailure            = scanerr.StatusStoreOperationFailure
	StatusRoutingFailureRequestTooLarge    = scanerr.StatusRoutingFailureRequestTooLarge
	StatusRoutingFailureResponseTooLarge   = scanerr.StatusRoutingFailureResponseTooLarge
	StatusMissingAttributeListEntry        = scanerr.StatusMissingAttributeListEntry
	StatusInvalidAttributeValueList        = scanerr.StatusInvalidAttributeValueList
	StatusEmbeddedServiceError             = scanerr.StatusEmbeddedServiceError
	StatusVendorSpecificError              = scanerr.StatusVendorSpecificError
	StatusInvalidParameter2                = scanerr.StatusInvalidParameter2
	StatusWriteOnceValueAlreadyWritten     = scanerr.StatusWriteOnceValueAlreadyWritten
	StatusInvalidReplyReceived             = scanerr.StatusInvalidReplyReceived
	StatusBufferOverflow                   = scanerr.StatusBufferOverflow
	StatusMessageFormatError               = scanerr.StatusMessageFormatError
	StatusKeyFailureInPath                 = scanerr.StatusKeyFailureInPath
	StatusPathSizeInvalid                  = scanerr.StatusPathSizeInvalid
	StatusUnexpectedAttributeInList        = scanerr.StatusUnexpectedAttributeInList
	StatusInvalidMemberID                  = scanerr.StatusInvalidMemberID
	StatusMemberNotSettable                = scanerr.StatusMemberNotSettable
	StatusGroup2OnlyServerGeneralFailure   = scanerr.StatusGroup2OnlyServerGeneralFailure
	StatusUnknownModNetworkError           = scanerr.StatusUnknownModNetworkError
	StatusVendorInvalidInstanceOrAttribute = scanerr.StatusVendorInvalidInstanceOrAttribute
)
