package photos

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// record is one CloudKit record with its loosely typed field map.
type record struct {
	RecordName string           `json:"recordName"`
	RecordType string           `json:"recordType"`
	Fields     map[string]field `json:"fields"`
}

type field struct {
	Value json.RawMessage `json:"value"`
}

func (r *record) stringField(name string) string {
	var s string
	if f, ok := r.Fields[name]; ok {
		_ = json.Unmarshal(f.Value, &s)
	}
	return s
}

func (r *record) intField(name string) int64 {
	var n int64
	if f, ok := r.Fields[name]; ok {
		_ = json.Unmarshal(f.Value, &n)
	}
	return n
}

// Asset is one photo or video, combining the asset record with its
// master record.
type Asset struct {
	ID       string
	Filename string
	Size     int64
	Width    int64
	Height   int64
	Created  time.Time
}

// assetFromRecords pairs a CPLAsset record with its CPLMaster record.
func assetFromRecords(asset, master *record) Asset {
	a := Asset{
		ID:      asset.RecordName,
		Created: time.UnixMilli(asset.intField("assetDate")),
	}

	if master == nil {
		return a
	}

	// File names are base64 encoded on the wire.
	if enc := master.stringField("filenameEnc"); enc != "" {
		if decoded, err := base64.StdEncoding.DecodeString(enc); err == nil {
			a.Filename = string(decoded)
		}
	}

	var original struct {
		Size int64 `json:"size"`
	}
	if f, ok := master.Fields["resOriginalRes"]; ok {
		_ = json.Unmarshal(f.Value, &original)
	}
	a.Size = original.Size
	a.Width = master.intField("resOriginalWidth")
	a.Height = master.intField("resOriginalHeight")
	return a
}

// masterRef extracts the master record name referenced by an asset
// record.
func (r *record) masterRef() string {
	var ref struct {
		RecordName string `json:"recordName"`
	}
	if f, ok := r.Fields["masterRef"]; ok {
		_ = json.Unmarshal(f.Value, &ref)
	}
	return ref.RecordName
}
