package ua

import "fmt"

// StatusCode is the protocol's 32-bit operation result. The top two bits
// classify the code as good, uncertain, or bad.
type StatusCode uint32

// Severity bits.
const (
	severityMask      uint32 = 0xC0000000
	severityGood      uint32 = 0x00000000
	severityUncertain uint32 = 0x40000000
	severityBad       uint32 = 0x80000000
)

// IsGood reports whether the code has good severity.
func (c StatusCode) IsGood() bool {
	return uint32(c)&severityMask == severityGood
}

// IsUncertain reports whether the code has uncertain severity.
func (c StatusCode) IsUncertain() bool {
	return uint32(c)&severityMask == severityUncertain
}

// IsBad reports whether the code has bad severity.
func (c StatusCode) IsBad() bool {
	return uint32(c)&severityMask == severityBad
}

// Error implements the error interface so bad codes can be returned and
// wrapped directly. Only bad codes should be surfaced as errors.
func (c StatusCode) Error() string {
	return c.String()
}

// String returns the symbolic name for known codes and a hex form for
// the rest.
func (c StatusCode) String() string {
	if name, ok := statusCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// Status codes used by this module. Values are the standard wire values.
const (
	Good StatusCode = 0x00000000

	UncertainInitialValue StatusCode = 0x40920000

	BadUnexpectedError           StatusCode = 0x80010000
	BadInternalError             StatusCode = 0x80020000
	BadOutOfMemory               StatusCode = 0x80030000
	BadResourceUnavailable       StatusCode = 0x80040000
	BadCommunicationError        StatusCode = 0x80050000
	BadEncodingError             StatusCode = 0x80060000
	BadDecodingError             StatusCode = 0x80070000
	BadEncodingLimitsExceeded    StatusCode = 0x80080000
	BadUnknownResponse           StatusCode = 0x80090000
	BadTimeout                   StatusCode = 0x800A0000
	BadServiceUnsupported        StatusCode = 0x800B0000
	BadShutdown                  StatusCode = 0x800C0000
	BadServerNotConnected        StatusCode = 0x800D0000
	BadServerHalted              StatusCode = 0x800E0000
	BadNothingToDo               StatusCode = 0x800F0000
	BadTooManyOperations         StatusCode = 0x80100000
	BadSecurityChecksFailed      StatusCode = 0x80130000
	BadUserAccessDenied          StatusCode = 0x801F0000
	BadIdentityTokenInvalid      StatusCode = 0x80200000
	BadIdentityTokenRejected     StatusCode = 0x80210000
	BadSecureChannelIDInvalid    StatusCode = 0x80220000
	BadInvalidTimestamp          StatusCode = 0x80230000
	BadSessionIDInvalid          StatusCode = 0x80250000
	BadSessionClosed             StatusCode = 0x80260000
	BadSessionNotActivated       StatusCode = 0x80270000
	BadSubscriptionIDInvalid     StatusCode = 0x80280000
	BadNodeIDInvalid             StatusCode = 0x80330000
	BadNodeIDUnknown             StatusCode = 0x80340000
	BadAttributeIDInvalid        StatusCode = 0x80350000
	BadIndexRangeInvalid         StatusCode = 0x80360000
	BadIndexRangeNoData          StatusCode = 0x80370000
	BadNotReadable               StatusCode = 0x803A0000
	BadNotWritable               StatusCode = 0x803B0000
	BadOutOfRange                StatusCode = 0x803C0000
	BadNotSupported              StatusCode = 0x803D0000
	BadNotFound                  StatusCode = 0x803E0000
	BadNotImplemented            StatusCode = 0x80400000
	BadMonitoringModeInvalid     StatusCode = 0x80410000
	BadMonitoredItemIDInvalid    StatusCode = 0x80420000
	BadContinuationPointInvalid  StatusCode = 0x804A0000
	BadNoContinuationPoints      StatusCode = 0x804B0000
	BadReferenceTypeIDInvalid    StatusCode = 0x804C0000
	BadBrowseDirectionInvalid    StatusCode = 0x804D0000
	BadNodeNotInView             StatusCode = 0x804E0000
	BadMethodInvalid             StatusCode = 0x80750000
	BadArgumentsMissing          StatusCode = 0x80760000
	BadTooManySubscriptions      StatusCode = 0x80770000
	BadNoSubscription            StatusCode = 0x80790000
	BadSecureChannelClosed       StatusCode = 0x80860000
	BadInvalidArgument           StatusCode = 0x80AB0000
	BadConnectionRejected        StatusCode = 0x80AC0000
	BadDisconnect                StatusCode = 0x80AD0000
	BadConnectionClosed          StatusCode = 0x80AE0000
	BadInvalidState              StatusCode = 0x80AF0000
	BadEndOfStream               StatusCode = 0x80B00000
	BadRequestTooLarge           StatusCode = 0x80B80000
	BadResponseTooLarge          StatusCode = 0x80B90000
	BadRequestInterrupted        StatusCode = 0x80840000
	BadRequestTimeout            StatusCode = 0x80850000
	BadTooManyMonitoredItems     StatusCode = 0x80DB0000
	BadTimestampsToReturnInvalid StatusCode = 0x802B0000
)

var statusCodeNames = map[StatusCode]string{
	Good:                         "Good",
	UncertainInitialValue:        "UncertainInitialValue",
	BadUnexpectedError:           "BadUnexpectedError",
	BadInternalError:             "BadInternalError",
	BadOutOfMemory:               "BadOutOfMemory",
	BadResourceUnavailable:       "BadResourceUnavailable",
	BadCommunicationError:        "BadCommunicationError",
	BadEncodingError:             "BadEncodingError",
	BadDecodingError:             "BadDecodingError",
	BadEncodingLimitsExceeded:    "BadEncodingLimitsExceeded",
	BadUnknownResponse:           "BadUnknownResponse",
	BadTimeout:                   "BadTimeout",
	BadServiceUnsupported:        "BadServiceUnsupported",
	BadShutdown:                  "BadShutdown",
	BadServerNotConnected:        "BadServerNotConnected",
	BadServerHalted:              "BadServerHalted",
	BadNothingToDo:               "BadNothingToDo",
	BadTooManyOperations:         "BadTooManyOperations",
	BadSecurityChecksFailed:      "BadSecurityChecksFailed",
	BadUserAccessDenied:          "BadUserAccessDenied",
	BadIdentityTokenInvalid:      "BadIdentityTokenInvalid",
	BadIdentityTokenRejected:     "BadIdentityTokenRejected",
	BadSecureChannelIDInvalid:    "BadSecureChannelIDInvalid",
	BadInvalidTimestamp:          "BadInvalidTimestamp",
	BadSessionIDInvalid:          "BadSessionIDInvalid",
	BadSessionClosed:             "BadSessionClosed",
	BadSessionNotActivated:       "BadSessionNotActivated",
	BadSubscriptionIDInvalid:     "BadSubscriptionIDInvalid",
	BadNodeIDInvalid:             "BadNodeIDInvalid",
	BadNodeIDUnknown:             "BadNodeIDUnknown",
	BadAttributeIDInvalid:        "BadAttributeIDInvalid",
	BadIndexRangeInvalid:         "BadIndexRangeInvalid",
	BadIndexRangeNoData:          "BadIndexRangeNoData",
	BadNotReadable:               "BadNotReadable",
	BadNotWritable:               "BadNotWritable",
	BadOutOfRange:                "BadOutOfRange",
	BadNotSupported:              "BadNotSupported",
	BadNotFound:                  "BadNotFound",
	BadNotImplemented:            "BadNotImplemented",
	BadMonitoringModeInvalid:     "BadMonitoringModeInvalid",
	BadMonitoredItemIDInvalid:    "BadMonitoredItemIDInvalid",
	BadContinuationPointInvalid:  "BadContinuationPointInvalid",
	BadNoContinuationPoints:      "BadNoContinuationPoints",
	BadReferenceTypeIDInvalid:    "BadReferenceTypeIDInvalid",
	BadBrowseDirectionInvalid:    "BadBrowseDirectionInvalid",
	BadNodeNotInView:             "BadNodeNotInView",
	BadMethodInvalid:             "BadMethodInvalid",
	BadArgumentsMissing:          "BadArgumentsMissing",
	BadTooManySubscriptions:      "BadTooManySubscriptions",
	BadNoSubscription:            "BadNoSubscription",
	BadSecureChannelClosed:       "BadSecureChannelClosed",
	BadInvalidArgument:           "BadInvalidArgument",
	BadConnectionRejected:        "BadConnectionRejected",
	BadDisconnect:                "BadDisconnect",
	BadConnectionClosed:          "BadConnectionClosed",
	BadInvalidState:              "BadInvalidState",
	BadEndOfStream:               "BadEndOfStream",
	BadRequestTooLarge:           "BadRequestTooLarge",
	BadResponseTooLarge:          "BadResponseTooLarge",
	BadRequestInterrupted:        "BadRequestInterrupted",
	BadRequestTimeout:            "BadRequestTimeout",
	BadTooManyMonitoredItems:     "BadTooManyMonitoredItems",
	BadTimestampsToReturnInvalid: "BadTimestampsToReturnInvalid",
}
