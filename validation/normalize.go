package validation

import (
	"reflect"
	"strings"

	"github.com/rpupo63/melba-site-backend/models"
)

var (
	stringListType = reflect.TypeOf(models.StringList{})
	agePtrType     = reflect.TypeOf((*models.Age)(nil))
)

// Normalize trims string fields, drops blank list entries and clears
// optional ages left empty by a form. Fields validated as emails are left
// untouched so surrounding whitespace is still rejected.
func Normalize(rec any) {
	rv := reflect.ValueOf(rec)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	normalizeStruct(rv.Elem())
}

func normalizeStruct(rv reflect.Value) {
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		fv := rv.Field(i)
		if !sf.IsExported() || !fv.CanSet() {
			continue
		}
		switch {
		case sf.Anonymous && fv.Kind() == reflect.Struct:
			normalizeStruct(fv)
		case fv.Type() == stringListType:
			fv.Set(reflect.ValueOf(fv.Interface().(models.StringList).Clean()))
		case fv.Type() == agePtrType:
			if !fv.IsNil() && fv.Elem().Int() == 0 {
				fv.Set(reflect.Zero(agePtrType))
			}
		case fv.Kind() == reflect.String && !isEmailField(sf):
			fv.SetString(strings.TrimSpace(fv.String()))
		}
	}
}

func lowerEmails(rv reflect.Value) {
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		fv := rv.Field(i)
		switch {
		case sf.Anonymous && fv.Kind() == reflect.Struct:
			lowerEmails(fv)
		case fv.Kind() == reflect.String && fv.CanSet() && isEmailField(sf):
			fv.SetString(strings.ToLower(fv.String()))
		}
	}
}

func isEmailField(sf reflect.StructField) bool {
	for _, rule := range strings.Split(sf.Tag.Get("validate"), ",") {
		if rule == emailTag {
			return true
		}
	}
	return false
}
