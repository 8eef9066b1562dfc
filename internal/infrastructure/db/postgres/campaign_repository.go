package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
)

const campaignColumns = `id, name, description, amount, start_date, end_date, status, owner_id, created_at, updated_at, is_deleted`

// sortColumns maps allow-listed sort fields onto column names. Only values
// from this map are ever interpolated into SQL.
var sortColumns = map[domain.SortField]string{
	domain.SortByName:    "name",
	domain.SortByAmount:  "amount",
	domain.SortByStart:   "start_date",
	domain.SortByEnd:     "end_date",
	domain.SortByStatus:  "status",
	domain.SortByCreated: "created_at",
}

type CampaignRepository struct {
	db DBTX
}

var _ ports.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository(db DBTX) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c      domain.Campaign
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Amount, &c.StartDate, &c.EndDate,
		&status, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &c.IsDeleted); err != nil {
		return nil, err
	}
	c.Status = domain.CampaignStatus(status)
	return &c, nil
}

func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx,
		`INSERT INTO campaigns (name, description, amount, start_date, end_date, status, owner_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		c.Name, c.Description, c.Amount, c.StartDate, c.EndDate, string(c.Status), c.OwnerID, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepository) FindByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c, err := scanCampaign(r.db.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE is_deleted = FALSE AND id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	return c, nil
}

// Update writes the mutable columns. owner_id and created_at are never touched.
func (r *CampaignRepository) Update(ctx context.Context, c *domain.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`UPDATE campaigns
		 SET name = $2, description = $3, amount = $4, start_date = $5, end_date = $6, status = $7, updated_at = $8
		 WHERE is_deleted = FALSE AND id = $1`,
		c.ID, c.Name, c.Description, c.Amount, c.StartDate, c.EndDate, string(c.Status), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`UPDATE campaigns SET is_deleted = TRUE, updated_at = $2 WHERE is_deleted = FALSE AND id = $1`,
		id, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) List(ctx context.Context, filter ports.CampaignFilter) ([]*domain.Campaign, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	where, args := listWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	n := len(args)
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE ` + where +
		` ORDER BY ` + listOrder(filter) +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Campaign, 0, filter.PageSize)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	return items, total, nil
}

// listWhere composes the visibility predicate first, then the optional status
// and search clauses, returning the clause and its positional arguments.
func listWhere(f ports.CampaignFilter) (string, []any) {
	conds := []string{"is_deleted = FALSE"}
	var args []any

	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, f.Search)
		p := "$" + strconv.Itoa(len(args))
		conds = append(conds, "(strpos(lower(name), lower("+p+")) > 0 OR strpos(lower(description), lower("+p+")) > 0)")
	}
	return strings.Join(conds, " AND "), args
}

func listOrder(f ports.CampaignFilter) string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreated]
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return column + " " + dir + ", id ASC"
}
