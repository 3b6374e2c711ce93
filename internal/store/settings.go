package store

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// escapePath makes a settings key safe to use as an sjson path. Keys are
// opaque to the platform, so characters sjson treats as path syntax must be
// escaped or a key like "display.mode" would be written as a nested object.
var escapePath = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)

// mergeSettings applies patch onto existing, key by top-level key. Settings
// blobs are opaque to the platform, so the merge is shallow: each key in the
// patch replaces the same key in the stored object, and an explicit JSON
// null deletes the key.
func mergeSettings(existing, patch json.RawMessage) (json.RawMessage, error) {
	parsed := gjson.ParseBytes(patch)
	if !parsed.IsObject() {
		return nil, ErrInvalidSettings
	}

	out := existing
	if len(out) == 0 {
		out = json.RawMessage(`{}`)
	} else if !gjson.ParseBytes(out).IsObject() {
		// A corrupt stored blob should not make settings unwritable.
		out = json.RawMessage(`{}`)
	}

	var mergeErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		var err error
		path := escapePath.Replace(key.String())
		if value.Type == gjson.Null {
			out, err = sjson.DeleteBytes(out, path)
		} else {
			out, err = sjson.SetRawBytes(out, path, []byte(value.Raw))
		}
		if err != nil {
			mergeErr = err
			return false
		}
		return true
	})
	if mergeErr != nil {
		return nil, mergeErr
	}

	return out, nil
}
