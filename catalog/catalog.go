// Package catalog implements the on-disk schema of MetaData-<prefix>.json
//: the Serializer's global meta info, field map, and savepoint
// vector, version-tagged for forward compatibility.
package catalog

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/field"
	"github.com/joshuapare/serialbox/metainfo"
	"github.com/joshuapare/serialbox/savepoint"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// FormatVersion is the integer written as
// serialbox_meta_info.format_version.
const FormatVersion = 1

type fieldEntry struct {
	Name string        `json:"name"`
	Type string        `json:"type_id"`
	Dims []int64       `json:"dims"`
	Meta *metainfo.Map `json:"meta_info"`
}

type savepointFieldEntry struct {
	FieldName  string `json:"field_name"`
	Occurrence uint64 `json:"id"`
}

type savepointEntry struct {
	Name   string                `json:"name"`
	Meta   *metainfo.Map         `json:"meta_info"`
	Fields []savepointFieldEntry `json:"fields"`
}

type document struct {
	SerialboxMetaInfo struct {
		FormatVersion int `json:"format_version"`
	} `json:"serialbox_meta_info"`
	GlobalMetaInfo *metainfo.Map    `json:"global_meta_info"`
	FieldMap       []fieldEntry     `json:"field_map"`
	SavepointVec   []savepointEntry `json:"savepoint_vector"`
	ArchiveName    string           `json:"archive_name"`
}

// Catalog is the in-memory form decoded from, or destined for, the
// MetaData-<prefix>.json file.
type Catalog struct {
	GlobalMeta  *metainfo.Map
	Fields      *field.Map
	Savepoints  *savepoint.Vector
	ArchiveName string
}

// Encode serializes c into the catalog file schema.
func Encode(c *Catalog) ([]byte, error) {
	doc := document{
		GlobalMetaInfo: c.GlobalMeta,
		ArchiveName:    c.ArchiveName,
	}
	doc.SerialboxMetaInfo.FormatVersion = FormatVersion

	c.Fields.Enumerate(func(name string, info *field.MetaInfo) {
		doc.FieldMap = append(doc.FieldMap, fieldEntry{
			Name: name,
			Type: info.Type.String(),
			Dims: info.Dims,
			Meta: info.Meta,
		})
	})

	c.Savepoints.Enumerate(func(sp *savepoint.Savepoint) {
		entry := savepointEntry{Name: sp.Name, Meta: sp.Meta}
		ids, _ := c.Savepoints.FieldsOf(sp)
		for _, id := range ids {
			entry.Fields = append(entry.Fields, savepointFieldEntry{
				FieldName:  id.FieldName,
				Occurrence: id.Occurrence,
			})
		}
		doc.SavepointVec = append(doc.SavepointVec, entry)
	})

	return jsonAPI.MarshalIndent(doc, "", "  ")
}

// Decode parses data into a fresh Catalog. Fails with MetaDataCorrupt on
// any structural or type problem, and reports an unrecognized
// format_version the same way.
func Decode(data []byte) (*Catalog, error) {
	var doc document
	if err := jsonAPI.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.MetaDataCorrupt, "decoding catalog document", err)
	}
	if doc.SerialboxMetaInfo.FormatVersion != FormatVersion {
		return nil, errs.Newf(errs.MetaDataCorrupt, "unsupported format_version %d", doc.SerialboxMetaInfo.FormatVersion)
	}

	globalMeta := doc.GlobalMetaInfo
	if globalMeta == nil {
		globalMeta = metainfo.NewMap()
	}

	fields := field.NewMap()
	for _, fe := range doc.FieldMap {
		tid, ok := metainfo.ParseTypeID(fe.Type)
		if !ok {
			return nil, errs.Newf(errs.MetaDataCorrupt, "field %q has unknown type_id %q", fe.Name, fe.Type)
		}
		info := &field.MetaInfo{Type: tid, Dims: fe.Dims, Meta: fe.Meta}
		if info.Meta == nil {
			info.Meta = metainfo.NewMap()
		}
		if _, err := fields.RegisterField(fe.Name, info); err != nil {
			return nil, errs.Wrap(errs.MetaDataCorrupt, "reloading field "+fe.Name, err)
		}
	}

	vec := savepoint.NewVector()
	for _, se := range doc.SavepointVec {
		sp := &savepoint.Savepoint{Name: se.Name, Meta: se.Meta}
		if sp.Meta == nil {
			sp.Meta = metainfo.NewMap()
		}
		if _, err := vec.Insert(sp); err != nil {
			return nil, errs.Wrap(errs.MetaDataCorrupt, "reloading savepoint "+se.Name, err)
		}
		for _, fe := range se.Fields {
			if _, err := vec.RestoreField(sp, fe.FieldName, fe.Occurrence); err != nil {
				return nil, errs.Wrap(errs.MetaDataCorrupt, "reloading savepoint field "+fe.FieldName, err)
			}
		}
	}

	return &Catalog{
		GlobalMeta:  globalMeta,
		Fields:      fields,
		Savepoints:  vec,
		ArchiveName: doc.ArchiveName,
	}, nil
}
