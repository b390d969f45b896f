package model

import (
	"encoding/json"
	"fmt"

	"pyape/orm"

	"github.com/juju/errors"
	"gorm.io/datatypes"
)

// ValueObject stores a small named value of a regional, such as a version
// or a token.
type ValueObject struct {
	VID        int            `gorm:"column:vid;primaryKey;autoIncrement" json:"vid"`
	R          int16          `gorm:"column:r;type:smallint;not null;default:0;index" json:"r"`
	Name       string         `gorm:"type:varchar(32);not null;uniqueIndex;comment:r prefixed name" json:"name"`
	Value      datatypes.JSON `gorm:"type:text;not null" json:"value"`
	VOType     int16          `gorm:"column:votype;type:smallint;not null;default:307;index" json:"votype"`
	Index      int16          `gorm:"column:index;type:smallint;not null;default:0" json:"index"`
	Status     Status         `gorm:"type:smallint;not null;default:1;index" json:"status"`
	CreateTime int64          `gorm:"column:createtime;not null;autoCreateTime" json:"createtime"`
	UpdateTime int64          `gorm:"column:updatetime;autoUpdateTime" json:"updatetime"`
	Note       *string        `gorm:"type:varchar(512)" json:"note,omitempty"`
}

// FullName prefixes name with its regional, names being unique across
// regionals.
func FullName(r int, name string) string {
	return fmt.Sprintf("r%d_%s", r, name)
}

func (vo *ValueObject) SetValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Trace(err)
	}
	vo.Value = datatypes.JSON(data)
	return nil
}

// GetValue decodes Value into out.
func (vo *ValueObject) GetValue(out any) error {
	return errors.Trace(json.Unmarshal(vo.Value, out))
}

// Merge returns Value as an object with vid, name and index added. A value
// that is not an object is kept under "value".
func (vo *ValueObject) Merge() (map[string]any, error) {
	var decoded any
	if len(vo.Value) > 0 {
		if err := vo.GetValue(&decoded); err != nil {
			return nil, err
		}
	}
	merged, ok := decoded.(map[string]any)
	if !ok {
		merged = map[string]any{}
		if decoded != nil {
			merged["value"] = decoded
		}
	}
	merged["vid"] = vo.VID
	merged["name"] = vo.Name
	merged["index"] = int(vo.Index)
	merged["votype"] = int(vo.VOType)
	merged["status"] = int(vo.Status)
	merged["createtime"] = vo.CreateTime
	merged["updatetime"] = vo.UpdateTime
	if vo.Note != nil {
		merged["note"] = *vo.Note
	}
	return merged, nil
}

// BuildValueObjectTable defines value object tables in the namespace of the
// bind key asked for.
func BuildValueObjectTable(db *orm.DB) orm.BuildFunc {
	return builder(db, &ValueObject{})
}
