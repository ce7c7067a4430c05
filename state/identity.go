package state

// NodeId is an opaque, globally unique router identity.
type NodeId string

// Less orders NodeIds lexicographically, the same order candidate
// selection sorts neighbors in so that ties go to the smallest NodeId.
func (n NodeId) Less(other NodeId) bool {
	return n < other
}
