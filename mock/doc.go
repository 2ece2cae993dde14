// Package mock provides recorded responses for composure clients.
//
// [Table] is a composure.MockOracle keyed by method and URL; hand it to
// composure.WithMockOracle to answer known routes without touching the
// network while unknown routes still reach the real transport. [Transport]
// is a scriptable composure.Transport that records what it was sent.
package mock
