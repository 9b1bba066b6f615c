package repositories

// TxRepos bundles the repositories bound to a single transaction.
type TxRepos struct {
	Orders   OrderRepository
	Products ProductRepository
}

// TxRunner runs a function against a transactional view of the order and
// product repositories. If fn returns an error every write made through the
// bundled repositories is rolled back, so stock decrements and the order
// insert commit as one atomic unit or not at all.
type TxRunner interface {
	InTransaction(fn func(repos TxRepos) error) error
}
