// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"sort"
	"sync"
)

// Reporter is used to accumulate and report errors while lexing a set of
// files. Each file stops at its first lexical error but the remaining files
// are still processed so that the final set can be shown to the user at once.
type Reporter interface {
	// Report adds the given record to the set. If this method returns an error
	// then the given error is considered fatal.
	Report(Exception) Exception
	// Reported returns the set of accumulated exceptions ordered by location.
	Reported() []Exception
}

// NewReporter returns a concurrent-safe implementation of Reporter.
func NewReporter(nonFatal []string) Reporter {
	nf := make(map[string]bool, len(defaultNonFatal))
	for k := range defaultNonFatal {
		nf[k] = true
	}
	for _, k := range nonFatal {
		nf[k] = true
	}
	return &reporterLock{
		Reporter: &reporter{
			nonFatal: nf,
		},
		lock: &sync.Mutex{},
	}
}

type reporter struct {
	reported []Exception
	nonFatal map[string]bool
}

func (r *reporter) Report(e Exception) Exception {
	if e == nil {
		return nil
	}
	r.reported = append(r.reported, e)
	if r.nonFatal[e.Code()] {
		return nil
	}
	return e
}

// Files are lexed concurrently so insertion order is not stable.
func (r *reporter) Reported() []Exception {
	result := make([]Exception, len(r.reported))
	copy(result, r.reported)
	sort.SliceStable(result, func(i int, j int) bool {
		li, lj := result[i].Location(), result[j].Location()
		if li.URI != lj.URI {
			return li.URI < lj.URI
		}
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		return li.Column < lj.Column
	})
	return result
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Reported()
}
