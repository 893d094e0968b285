package errors

type ErrorCode string

const (
	ErrIOOpenFailed  ErrorCode = "IO_OPEN_FAILED"
	ErrIOCloseFailed ErrorCode = "IO_CLOSE_FAILED"
	ErrIOReadFailed  ErrorCode = "IO_READ_FAILED"

	ErrValidationInvalidData       ErrorCode = "VALIDATION_INVALID_DATA"
	ErrValidationRequiredField     ErrorCode = "VALIDATION_REQUIRED_FIELD"
	ErrValidationInvalidCollection ErrorCode = "VALIDATION_INVALID_COLLECTION"

	ErrParseFieldCount    ErrorCode = "PARSE_FIELD_COUNT"
	ErrParseInvalidNumber ErrorCode = "PARSE_INVALID_NUMBER"
	ErrParseInvalidField  ErrorCode = "PARSE_INVALID_FIELD"

	ErrStorageOpenFailed    ErrorCode = "STORAGE_OPEN_FAILED"
	ErrStorageCommitFailed  ErrorCode = "STORAGE_COMMIT_FAILED"
	ErrStorageIterateFailed ErrorCode = "STORAGE_ITERATE_FAILED"

	ErrRecordSerialization   ErrorCode = "RECORD_SERIALIZATION"
	ErrRecordDeserialization ErrorCode = "RECORD_DESERIALIZATION"
)
