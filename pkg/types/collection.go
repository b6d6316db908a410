package types

// Collection names as stored in the hosted table service. The same names
// key the local snapshots.
const (
	CollectionProjects     = "projects"
	CollectionCertificates = "certificates"
	CollectionComments     = "comments"
)

// Order describes the ordering of a select-all read.
type Order struct {
	Column    string
	Ascending bool
}

// defaultOrders holds the documented read order of each collection.
var defaultOrders = map[string]Order{
	CollectionProjects:     {Column: "id", Ascending: false},
	CollectionCertificates: {Column: "id", Ascending: false},
	CollectionComments:     {Column: "created_at", Ascending: false},
}

// DefaultOrder returns the read order for a collection. Unknown collections
// are ordered by id ascending.
func DefaultOrder(collection string) Order {
	if o, ok := defaultOrders[collection]; ok {
		return o
	}
	return Order{Column: "id", Ascending: true}
}
