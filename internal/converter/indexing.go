package converter

import "cloud.google.com/go/datastore/apiv1/datastorepb"

// MaxIndexedStringBytes is the largest string Datastore accepts in an index.
const MaxIndexedStringBytes = 1500

func (c *Converter) excluded(property string) bool {
	for _, regex := range c.exclusions {
		if regex.MatchString(property) {
			return true
		}
	}
	return false
}

// excludeFromIndexes flags v. Datastore rejects the flag on array values,
// so arrays pass it down to their elements instead.
func excludeFromIndexes(v *datastorepb.Value) {
	if arr := v.GetArrayValue(); arr != nil {
		for _, element := range arr.GetValues() {
			excludeFromIndexes(element)
		}
		return
	}
	v.ExcludeFromIndexes = true
}
