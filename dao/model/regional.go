package model

import (
	"pyape/orm"

	"github.com/juju/errors"
	"github.com/pelletier/go-toml/v2"
)

// Regional is one row of the regional table. Value holds the regional's
// configuration as a TOML document.
type Regional struct {
	R          int16   `gorm:"column:r;type:smallint;primaryKey;autoIncrement:false" json:"r"`
	Name       string  `gorm:"type:varchar(100);not null;comment:regional name" json:"name"`
	Value      *string `gorm:"type:text;comment:TOML config" json:"value"`
	KindType   int16   `gorm:"column:kindtype;type:smallint;not null;default:0;index" json:"kindtype"`
	Status     Status  `gorm:"type:smallint;not null;default:1" json:"status"`
	CreateTime int64   `gorm:"column:createtime;not null;autoCreateTime" json:"createtime"`
	UpdateTime int64   `gorm:"column:updatetime;autoUpdateTime" json:"updatetime"`
}

// R2Type classifies regional id r.
func R2Type(r int) RType {
	switch {
	case r >= 1000 && r < 2000:
		return RTypeTest
	case r >= 2000 && r < 3000:
		return RTypeReview
	case r >= 5000:
		return RTypeRelease
	}
	return RTypeNone
}

// RTypeRange is the inclusive id range queried for rtype.
func RTypeRange(rtype RType) (int, int) {
	switch rtype {
	case RTypeTest:
		return 1000, 1999
	case RTypeReview:
		return 2000, 2999
	}
	return 5000, 5999
}

// ValidateValue reports whether value is a TOML document.
func ValidateValue(value string) error {
	var v map[string]any
	if err := toml.Unmarshal([]byte(value), &v); err != nil {
		return errors.NotValidf("value is not a TOML string: %v", err)
	}
	return nil
}

// Merge overlays the row's columns on its parsed TOML value.
func (r *Regional) Merge() (map[string]any, error) {
	merged := map[string]any{}
	if r.Value != nil && *r.Value != "" {
		if err := toml.Unmarshal([]byte(*r.Value), &merged); err != nil {
			return nil, errors.Annotatef(err, "regional %d value", r.R)
		}
	}
	merged["r"] = int(r.R)
	merged["name"] = r.Name
	merged["kindtype"] = int(r.KindType)
	merged["status"] = int(r.Status)
	merged["createtime"] = r.CreateTime
	merged["updatetime"] = r.UpdateTime
	if rtype := R2Type(int(r.R)); rtype != RTypeNone {
		merged["rtype"] = int(rtype)
	} else {
		merged["rtype"] = nil
	}
	return merged, nil
}

// BuildRegionalTable defines regional tables in the namespace of the bind key
// asked for.
func BuildRegionalTable(db *orm.DB) orm.BuildFunc {
	return builder(db, &Regional{})
}

func builder(db *orm.DB, model any) orm.BuildFunc {
	return func(name, bindKey string) (*orm.Table, error) {
		ns, err := db.Model(bindKey)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return ns.Define(name, model)
	}
}
