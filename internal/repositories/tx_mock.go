package repositories

// MockTxRunner imitates transactional semantics over the in-memory
// repositories: it snapshots their state before running fn and restores the
// snapshot when fn fails, so partial stock decrements are rolled back the
// same way a real transaction would.
type MockTxRunner struct {
	Orders   *MockOrderRepository
	Products *MockProductRepository
}

// NewMockTxRunner creates a new instance of MockTxRunner.
func NewMockTxRunner(orders *MockOrderRepository, products *MockProductRepository) *MockTxRunner {
	return &MockTxRunner{
		Orders:   orders,
		Products: products,
	}
}

// InTransaction runs fn against the in-memory repositories with rollback on
// error.
func (r *MockTxRunner) InTransaction(fn func(repos TxRepos) error) error {
	orders := r.Orders.snapshot()
	products, variants := r.Products.snapshot()

	err := fn(TxRepos{Orders: r.Orders, Products: r.Products})
	if err != nil {
		r.Orders.restore(orders)
		r.Products.restore(products, variants)
		return err
	}
	return nil
}
