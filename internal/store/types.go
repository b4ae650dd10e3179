package store

import (
	"reflect"

	"job-connect-backend/internal/model"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ListOptions controls paging of entity listings.
type ListOptions struct {
	Page            int
	PageSize        int
	IncludeDisabled bool
}

// Normalized applies the default page and clamps the page size.
func (o ListOptions) Normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.PageSize > maxPageSize {
		o.PageSize = maxPageSize
	}
	return o
}

// newSliceOf returns a pointer to an empty []T for the entity's struct type T.
func newSliceOf(et model.EntityType) any {
	elem := reflect.TypeOf(et.New()).Elem()
	return reflect.New(reflect.SliceOf(elem)).Interface()
}

func derefSlice(ptr any) any {
	return reflect.ValueOf(ptr).Elem().Interface()
}
