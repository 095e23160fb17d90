package test_helpers

import (
	"github.com/brunokim/l0/logic"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	// IgnoreUnexported skips cached fields of logic terms.
	IgnoreUnexported = cmp.Options{
		cmpopts.IgnoreUnexported(logic.Comp{}),
	}

	// EquateTerms compares logic terms structurally, with logic.Eq.
	EquateTerms = cmp.Comparer(func(t1, t2 logic.Term) bool {
		if t1 == nil || t2 == nil {
			return t1 == nil && t2 == nil
		}
		return logic.Eq(t1, t2)
	})
)
