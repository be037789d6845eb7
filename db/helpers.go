package db

import (
	"fmt"
	"math"
	"strconv"
)

// stringifyValue renders a decoded JSON/BSON value as the string a template
// or API field expects. Numbers that carry no fractional part are rendered
// without a decimal point, since both JSON and BSON decode them as float64.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
