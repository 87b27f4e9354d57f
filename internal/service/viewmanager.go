package service

import (
	"fmt"
	"strings"

	"showcase/internal/catalog"
)

// ViewManager holds the records shown on the landing page and an optional
// text filter over them.
type ViewManager struct {
	records    catalog.Records
	filtered   catalog.Records
	isFiltered bool
	query      string
}

// NewViewManager creates a ViewManager over records.
func NewViewManager(records catalog.Records) *ViewManager {
	return &ViewManager{records: records}
}

// SetRecords replaces the full list and re-applies any active filter.
func (vm *ViewManager) SetRecords(records catalog.Records) {
	vm.records = records
	if vm.isFiltered {
		vm.ApplyFilter(vm.query)
	}
}

// ApplyFilter keeps records whose title or description contains query,
// case-insensitively. A blank query clears the filter.
func (vm *ViewManager) ApplyFilter(query string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		vm.ClearFilter()
		return
	}
	vm.filtered = catalog.Records{}
	for _, rec := range vm.records {
		if strings.Contains(strings.ToLower(rec.Title), q) ||
			strings.Contains(strings.ToLower(rec.Description), q) {
			vm.filtered = append(vm.filtered, rec)
		}
	}
	vm.isFiltered = true
	vm.query = query
}

// ClearFilter removes any active filter.
func (vm *ViewManager) ClearFilter() {
	vm.filtered = nil
	vm.isFiltered = false
	vm.query = ""
}

// Query is the active filter text.
func (vm *ViewManager) Query() string {
	return vm.query
}

// GetCurrentList returns the active list (filtered or full).
func (vm *ViewManager) GetCurrentList() catalog.Records {
	if vm.isFiltered {
		return vm.filtered
	}
	return vm.records
}

func (vm *ViewManager) Count() int {
	return len(vm.GetCurrentList())
}

// ItemAt returns the record at index in the active list.
func (vm *ViewManager) ItemAt(index int) (*catalog.Record, error) {
	list := vm.GetCurrentList()
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("index %d out of bounds", index)
	}
	return &list[index], nil
}

// All returns the unfiltered list.
func (vm *ViewManager) All() catalog.Records {
	return vm.records
}
