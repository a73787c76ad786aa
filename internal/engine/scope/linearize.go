package scope

import (
	"github.com/slvDev/solwatch/internal/core/errors"
)

// Linearize computes the C3 linearization for a contract. Direct bases come
// in Solidity source order (most base-like to most derived) and the result is
// returned in the same orientation, so chains read base to derived.
//
// Solidity deviates from textbook C3 in two places, both reproduced here: the
// direct-base list is merged reversed (right-to-left precedence), and the
// merged result is reversed before returning.
func Linearize(name string, directBases []string, lookup func(string) ([]string, error)) ([]string, error) {
	if len(directBases) == 0 {
		return nil, nil
	}

	var lists [][]string
	for _, base := range directBases {
		baseChain, err := lookup(base)
		if err != nil {
			return nil, err
		}
		full := append([]string{base}, baseChain...)
		lists = append(lists, full)
	}

	reversed := make([]string, len(directBases))
	for i, base := range directBases {
		reversed[len(directBases)-1-i] = base
	}
	lists = append(lists, reversed)

	merged, err := c3Merge(name, lists)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(merged)-1; i < j; i, j = i+1, j-1 {
		merged[i], merged[j] = merged[j], merged[i]
	}
	return merged, nil
}

func c3Merge(name string, lists [][]string) ([]string, error) {
	var result []string

	lists = dropEmpty(lists)
	for len(lists) > 0 {
		head := ""
		for _, list := range lists {
			candidate := list[0]
			if !inAnyTail(candidate, lists) {
				head = candidate
				break
			}
		}
		if head == "" {
			return nil, errors.Newf(errors.CodeInconsistentHierarchy,
				"cannot build a consistent linearization for %s", name)
		}

		result = append(result, head)
		for i := range lists {
			if lists[i][0] == head {
				lists[i] = lists[i][1:]
			}
		}
		lists = dropEmpty(lists)
	}
	return result, nil
}

func inAnyTail(candidate string, lists [][]string) bool {
	for _, list := range lists {
		for _, item := range list[1:] {
			if item == candidate {
				return true
			}
		}
	}
	return false
}

func dropEmpty(lists [][]string) [][]string {
	out := lists[:0]
	for _, list := range lists {
		if len(list) > 0 {
			out = append(out, list)
		}
	}
	return out
}

// FallbackChain approximates a chain when C3 finds no consistent order: each
// base's own chain followed by the base, de-duplicated in first-seen order.
// Permissive so one pathological hierarchy does not abort the whole run.
func FallbackChain(directBases []string, lookup func(string) ([]string, error)) []string {
	var chain []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			chain = append(chain, name)
		}
	}
	for _, base := range directBases {
		if baseChain, err := lookup(base); err == nil {
			for _, ancestor := range baseChain {
				add(ancestor)
			}
		}
		add(base)
	}
	return chain
}
