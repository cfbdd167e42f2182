package domain

import "time"

type User struct {
	ID         int64      `db:"user_id"`
	Name       string     `db:"name"`
	Lastname   string     `db:"lastname"`
	Email      string     `db:"email"`
	Hash       string     `db:"password_hash"`
	CreateTime *time.Time `db:"create_time"`
	RoleID     *int64     `db:"role_id"` // loose reference, not a foreign key
	RoleName   string     `db:"role_name"`
}

type Role struct {
	ID   int64  `db:"role_id"`
	Name string `db:"role_name"`
}
