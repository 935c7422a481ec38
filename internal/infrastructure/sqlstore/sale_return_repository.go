package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.SaleReturnRepository = (*SaleReturnRepo)(nil)

const saleReturnColumns = `id, sale_id, reason, status, error, amount, refund_amount, lines, created_by, created_at`

// SaleReturnRepo auditoría de devoluciones; las líneas se guardan como JSON.
type SaleReturnRepo struct {
	q Querier
}

// NewSaleReturnRepository construye el repositorio de auditoría de devoluciones.
func NewSaleReturnRepository(q Querier) *SaleReturnRepo {
	return &SaleReturnRepo{q: q}
}

func (r *SaleReturnRepo) Create(ctx context.Context, ret *entity.SaleReturn) error {
	lines, err := json.Marshal(ret.Lines)
	if err != nil {
		return fmt.Errorf("encode return lines: %w", err)
	}
	_, err = r.q.Exec(ctx, `INSERT INTO sale_returns (`+saleReturnColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ret.ID, ret.SaleID, ret.Reason, ret.Status, ret.Error, ret.Amount, ret.RefundAmount, lines,
		ret.CreatedBy, ret.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale return: %w", err)
	}
	return nil
}

func (r *SaleReturnRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.SaleReturn, error) {
	rows, err := r.q.Query(ctx, `SELECT `+saleReturnColumns+` FROM sale_returns WHERE sale_id = $1 ORDER BY created_at, id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleReturn
	for rows.Next() {
		var ret entity.SaleReturn
		var lines []byte
		if err := rows.Scan(&ret.ID, &ret.SaleID, &ret.Reason, &ret.Status, &ret.Error, &ret.Amount,
			&ret.RefundAmount, &lines, &ret.CreatedBy, &ret.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale return: %w", err)
		}
		if len(lines) > 0 {
			if err := json.Unmarshal(lines, &ret.Lines); err != nil {
				return nil, fmt.Errorf("decode return lines: %w", err)
			}
		}
		list = append(list, &ret)
	}
	return list, rows.Err()
}
