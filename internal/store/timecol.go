package store

import (
	"fmt"
	"strings"
	"time"
)

// sqliteTimeLayout is fixed width so that text order equals time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

var timeLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// timeColumn scans created_at whether the driver hands back text
// (sqlite) or a time.Time (postgres).
type timeColumn struct {
	t time.Time
}

func (c *timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		c.t = time.Time{}
	case time.Time:
		c.t = v.UTC()
	case string:
		t, err := parseTime(v)
		if err != nil {
			return err
		}
		c.t = t
	case []byte:
		t, err := parseTime(string(v))
		if err != nil {
			return err
		}
		c.t = t
	default:
		return fmt.Errorf("cannot scan %T into created_at", src)
	}
	return nil
}
