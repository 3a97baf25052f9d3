package scan

// Predicate reports whether an Emission should be kept. Predicates
// compose: And short-circuits to false (i.e. Continue, not stop) on the
// first failing clause.
type Predicate func(Emission) bool

// MinLen accepts chains with at least k offsets. Param.NodeMin already
// suppresses shorter emissions inside Scan; this is the standalone form
// for composing with callbacks that don't set it (spec.md §4.E.1).
func MinLen(k int) Predicate {
	return func(e Emission) bool { return len(e.Offsets) >= k }
}

// LastEq accepts chains whose innermost offset — the one nearest the
// target, emitted last on the line — equals o.
func LastEq(o int64) Predicate {
	return func(e Emission) bool {
		return len(e.Offsets) > 0 && e.Offsets[len(e.Offsets)-1] == o
	}
}

// And is the logical conjunction of preds.
func And(preds ...Predicate) Predicate {
	return func(e Emission) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Filter wraps next so it only runs for emissions pred accepts; rejected
// emissions are treated as Continue, not a stop.
func Filter(pred Predicate, next PerChain) PerChain {
	return func(e Emission) (Outcome, error) {
		if !pred(e) {
			return Continue, nil
		}
		return next(e)
	}
}

// Limit wraps next so the scan halts (StopOK) once n emissions have been
// accepted by next. Emissions next itself declines (by returning
// Continue without error after doing nothing) still count, matching the
// "stop after N found" semantics a CLI --limit flag wants.
func Limit(n int, next PerChain) PerChain {
	count := 0
	return func(e Emission) (Outcome, error) {
		outcome, err := next(e)
		if err != nil {
			return outcome, err
		}
		count++
		if count >= n {
			return StopOK, nil
		}
		return outcome, nil
	}
}
