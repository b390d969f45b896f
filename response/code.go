package response

type ErrorCode int

const (
	OK ErrorCode = 0

	InvalidRequest ErrorCode = 40001
	InvalidValue   ErrorCode = 40002 // Value is not a TOML document

	RegionalInUse ErrorCode = 40301 // Value objects still reference the regional

	RegionalNotFound ErrorCode = 40401
	UnknownRegional  ErrorCode = 40402 // Not in the regional config
	UserNotFound     ErrorCode = 40403

	RegionalExists ErrorCode = 40901

	// Indicates laziness of the developer
	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)
