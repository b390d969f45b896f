package orm

import (
	"github.com/juju/errors"
)

// Error kinds returned by this package. Callers match them with the Is*
// helpers, which look at the cause so that annotations added on the way up
// do not hide the kind.
var (
	ErrConfiguration = errors.New("invalid engine configuration")
	ErrDuplicateBind = errors.New("bind key already exists")
	ErrDuplicateKey  = errors.New("key already exists")
	ErrUnknownTenant = errors.New("unknown regional")
	ErrTableNotFound = errors.New("table not found")
	ErrUnknownBind   = errors.New("unknown bind key")
)

func IsConfiguration(err error) bool { return errors.Cause(err) == ErrConfiguration }
func IsDuplicateBind(err error) bool { return errors.Cause(err) == ErrDuplicateBind }
func IsDuplicateKey(err error) bool  { return errors.Cause(err) == ErrDuplicateKey }
func IsUnknownTenant(err error) bool { return errors.Cause(err) == ErrUnknownTenant }
func IsTableNotFound(err error) bool { return errors.Cause(err) == ErrTableNotFound }
func IsUnknownBind(err error) bool   { return errors.Cause(err) == ErrUnknownBind }

// bindName renders a bind key for messages; the default key is empty.
func bindName(bindKey string) string {
	if bindKey == DefaultBind {
		return "<default>"
	}
	return bindKey
}
