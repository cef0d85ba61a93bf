package idwrap

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// IDWrap is a ULID used for item ids generated by this service. Items created
// elsewhere may carry any non-empty string id; IDWrap only covers ours.
type IDWrap struct {
	ulid ulid.ULID
}

// NewNow returns a fresh, monotonically sortable id.
func NewNow() IDWrap {
	return IDWrap{ulid: ulid.Make()}
}

func NewText(s string) (IDWrap, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return IDWrap{}, err
	}
	return IDWrap{ulid: id}, nil
}

func (u IDWrap) String() string {
	return u.ulid.String()
}

// Time returns the creation time embedded in the id.
func (u IDWrap) Time() time.Time {
	return ulid.Time(u.ulid.Time())
}
