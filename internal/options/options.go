// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package options

import "iter"

// Apply yields, in order, every non-nil option across the given lists that
// implements T. Callers pass the option list they were given first and their
// own defaults or overrides after it.
func Apply[T, O any](lists ...[]O) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, list := range lists {
			for _, opt := range list {
				op, ok := any(opt).(T)
				if !ok || any(op) == nil {
					continue
				}
				if !yield(op) {
					return
				}
			}
		}
	}
}
