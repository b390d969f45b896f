package model

// Regional and value object status
type Status int16

const (
	StatusNormal   Status = 1 // Enabled
	StatusDisabled Status = 5 // Disabled
)

// Regional type, derived from the regional id range
type RType int

const (
	RTypeNone    RType = 0
	RTypeTest    RType = 1000 // 1000-1999 test regionals
	RTypeReview  RType = 2000 // 2000-2999 review regionals
	RTypeRelease RType = 5000 // 5000 and above
)

// RTypes lists the regional types in ascending order.
var RTypes = []RType{RTypeTest, RTypeReview, RTypeRelease}

// Default value object type
const VOTypeDefault int16 = 307

// Dynamic table names
const (
	RegionalTableName    = "regional"
	ValueObjectTableName = "vo"
)

// UserTablePrefix names the per-regional user tables: user0, user1000...
const UserTablePrefix = "user"

// RootUID is the uid of the root user in the global regional's table.
const RootUID = 1
