package model

import "pyape/orm"

// User is one row of a per-regional user table. Every regional owns a
// table of its own, named user{r}.
type User struct {
	UID        int     `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	R          int16   `gorm:"column:r;type:smallint;index" json:"r"`
	Status     Status  `gorm:"type:smallint;not null;default:1" json:"status"`
	Nickname   *string `gorm:"type:varchar(64)" json:"nickname,omitempty"`
	HeadImg    *string `gorm:"column:headimg;type:text" json:"headimg,omitempty"`
	CreateTime int64   `gorm:"column:createtime;not null;autoCreateTime" json:"createtime"`
	UpdateTime int64   `gorm:"column:updatetime;not null;autoUpdateTime" json:"updatetime"`
	Note       *string `gorm:"type:varchar(100)" json:"note,omitempty"`
}

// BuildUserTable defines a user table in the namespace of the regional's
// bind_key_db.
func BuildUserTable(db *orm.DB) orm.BuildFunc {
	return builder(db, &User{})
}
