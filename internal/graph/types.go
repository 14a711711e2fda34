package graph

// Triple is one extracted (subject, predicate, object) relation. Predicates
// are normalized to UPPER_SNAKE before storage.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}
