// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import "encoding/json"

// encodeRecord and decodeRecord serialize a RefreshRecord for SessionStore
// backends, which only deal in opaque byte slices (so the same interface
// serves an in-process map and a Redis client identically).

func encodeRecord(record RefreshRecord) []byte {
	// RefreshRecord's fields are all JSON-marshalable by construction; a
	// marshal failure here would mean a programming error in this package,
	// not a runtime condition callers need to handle.
	data, err := json.Marshal(record)
	if err != nil {
		panic("vault: failed to encode session record: " + err.Error())
	}
	return data
}

func decodeRecord(data []byte) (RefreshRecord, error) {
	var record RefreshRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return RefreshRecord{}, err
	}
	return record, nil
}
