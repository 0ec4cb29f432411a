package otlayout

import (
	"errors"
	"slices"

	"github.com/npillmayer/otshaping/ot"
)

// LookupIndices collects the lookups of a set of features, without duplicates and
// in lookup list order. This is the order in which lookups have to be applied.
func LookupIndices(features []*ot.Feature) []int {
	var indices []int
	for _, f := range features {
		if f == nil {
			continue
		}
		indices = append(indices, f.LookupIndices()...)
	}
	slices.Sort(indices)
	return slices.Compact(indices)
}

// ApplyFeatures applies the lookups of features to the active window of line.
// Every lookup is applied to the whole window before the next lookup is applied.
//
// Lookups with malformed or unsupported subtables are still applied, using their
// usable subtables. Errors of such lookups are returned, joined into a single error.
// The line has been processed even if an error is returned.
func (r *TableReader) ApplyFeatures(line *GlyphLine, features []*ot.Feature) error {
	var errs []error
	for _, inx := range LookupIndices(features) {
		l := r.LookupTable(inx)
		if l == nil {
			tracer().Infof("%s: feature references lookup %d, which does not exist", r.table.Tag, inx)
			continue
		}
		if err := l.Err(); err != nil {
			r.reportOnce(l, err)
			errs = append(errs, err)
		}
		l.TransformLine(line)
	}
	return errors.Join(errs...)
}

// ApplyFeature applies the lookups of a single feature to line.
func (r *TableReader) ApplyFeature(line *GlyphLine, feature *ot.Feature) error {
	return r.ApplyFeatures(line, []*ot.Feature{feature})
}
