package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Tokyo")
	if err != nil {
		panic(err)
	}
}

// force timezone to be JST because the ticket site publishes all of its
// reservation windows in japanese local time, while our runners may
// end up anywhere, which will cause disturbances when comparing
// dates based on <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}

// the timestamp layout used by the seat calendar feed
const CompactLayout = "20060102150405"

// Compact renders t in the feed's YYYYMMDDHHmmss form, in JST.
func Compact(t time.Time) string {
	return t.In(Location).Format(CompactLayout)
}
