package cache

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const (
	// CountTag marks filter fields that change which rows match.
	CountTag = "count"
	// MaxFingerprintLength is the longest fingerprint kept verbatim; longer
	// ones are replaced by a digest.
	MaxFingerprintLength = 128
)

// FingerprintSerializer derives count cache keys from filter structs.
type FingerprintSerializer interface {
	Fingerprint(namespace string, filter any) string
}

type countField struct {
	index int
	name  string
}

// tagFingerprintSerializer builds fingerprints from the fields of a filter
// struct that carry a `count` tag. Untagged fields such as sorting and
// pagination never reach the key, so filters that only differ in those
// share a fingerprint.
type tagFingerprintSerializer struct {
	fields sync.Map // reflect.Type -> []countField
}

// NewFingerprintSerializer returns the tag-driven fingerprint serializer.
func NewFingerprintSerializer() FingerprintSerializer {
	return &tagFingerprintSerializer{}
}

// Fingerprint returns "<namespace>::<field>=<value>::..." for the tagged
// fields in declaration order. Nil pointers serialize as "*" (unbounded).
func (s *tagFingerprintSerializer) Fingerprint(namespace string, filter any) string {
	rv := reflect.ValueOf(filter)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return namespace
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return namespace + KeySeparator + formatValue(rv)
	}

	parts := []string{namespace}
	for _, f := range s.countFields(rv.Type()) {
		parts = append(parts, f.name+"="+formatValue(rv.Field(f.index)))
	}

	key := strings.Join(parts, KeySeparator)
	if len(key) > MaxFingerprintLength {
		return fmt.Sprintf("%s%sxx:%016x", namespace, KeySeparator, xxhash.Sum64String(key))
	}
	return key
}

func (s *tagFingerprintSerializer) countFields(rt reflect.Type) []countField {
	if cached, ok := s.fields.Load(rt); ok {
		return cached.([]countField)
	}

	var fields []countField
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if _, ok := sf.Tag.Lookup(CountTag); !ok {
			continue
		}
		fields = append(fields, countField{index: i, name: toSnake(sf.Name)})
	}

	s.fields.Store(rt, fields)
	return fields
}

// CountTags returns the `count` tag values of a filter type in field order.
func CountTags(filter any) []string {
	rt := reflect.TypeOf(filter)
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil
	}

	var tags []string
	for i := 0; i < rt.NumField(); i++ {
		if tag, ok := rt.Field(i).Tag.Lookup(CountTag); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

func formatValue(rv reflect.Value) string {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "*"
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String {
		// quoted so user text can never forge a separator
		return strconv.Quote(rv.String())
	}
	return fmt.Sprintf("%v", rv.Interface())
}
