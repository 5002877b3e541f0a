package graphql

import (
	"encoding/json"
	"fmt"
)

// canonicalKey serializes k so that structurally equal values produce the
// same string. encoding/json sorts map keys, which makes freshly built maps
// with equal content collide as intended.
func canonicalKey(k any) string {
	b, err := json.Marshal(k)
	if err != nil {
		return fmt.Sprintf("%T:%#v", k, k)
	}
	return string(b)
}
