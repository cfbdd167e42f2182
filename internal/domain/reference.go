package domain

import (
	"fmt"
	"strconv"
)

// Reference points at a taxonomy row either by id or by name.
type Reference struct {
	id   int64
	name string
	byID bool
}

func ByID(id int64) Reference      { return Reference{id: id, byID: true} }
func ByName(name string) Reference { return Reference{name: name} }

func (r Reference) IsID() bool   { return r.byID }
func (r Reference) ID() int64    { return r.id }
func (r Reference) Name() string { return r.name }
func (r Reference) IsZero() bool { return !r.byID && r.name == "" }

func (r Reference) String() string {
	if r.byID {
		return "#" + strconv.FormatInt(r.id, 10)
	}
	return fmt.Sprintf("%q", r.name)
}
