package repository

// Repos agrupa los repositorios atados a una misma conexión o transacción.
// El TxRunner entrega un Repos nuevo por transacción; fuera de ella se usa el del pool.
type Repos struct {
	Products    ProductRepository
	Customers   CustomerRepository
	Movements   StockMovementRepository
	Sales       SaleRepository
	Debts       DebtRepository
	Commissions CommissionRepository
	Delegates   DelegateRepository
	Returns     SaleReturnRepository
}
