package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
)

const campaignsCollection = "campaigns"

// sortColumns maps allow-listed sort fields onto document keys.
var sortColumns = map[domain.SortField]string{
	domain.SortByName:    "name",
	domain.SortByAmount:  "amount",
	domain.SortByStart:   "start_date",
	domain.SortByEnd:     "end_date",
	domain.SortByStatus:  "status",
	domain.SortByCreated: "created_at",
}

type CampaignRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

var _ ports.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{db: db, col: db.Collection(campaignsCollection)}
}

type campaignDocument struct {
	ID          int64      `bson:"_id"`
	Name        string     `bson:"name"`
	Description string     `bson:"description"`
	Amount      float64    `bson:"amount"`
	StartDate   time.Time  `bson:"start_date"`
	EndDate     time.Time  `bson:"end_date"`
	Status      string     `bson:"status"`
	OwnerID     int64      `bson:"owner_id"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty"`
	IsDeleted   bool       `bson:"is_deleted"`
}

func (d campaignDocument) toDomain() *domain.Campaign {
	return &domain.Campaign{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Amount:      d.Amount,
		StartDate:   d.StartDate.UTC(),
		EndDate:     d.EndDate.UTC(),
		Status:      domain.CampaignStatus(d.Status),
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt,
		IsDeleted:   d.IsDeleted,
	}
}

// visible is the base predicate for every read path.
func visible() bson.M {
	return bson.M{"is_deleted": false}
}

// Create inserts a new campaign document with the next numeric ID.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, campaignsCollection)
	if err != nil {
		return err
	}

	doc := campaignDocument{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
		Amount:      c.Amount,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Status:      string(c.Status),
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	c.ID = id
	return nil
}

// FindByID retrieves a visible campaign.
func (r *CampaignRepository) FindByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := visible()
	filter["_id"] = id

	var doc campaignDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	return doc.toDomain(), nil
}

// Update sets the mutable fields. Owner and creation time are never written.
func (r *CampaignRepository) Update(ctx context.Context, c *domain.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := visible()
	filter["_id"] = c.ID

	set := bson.M{
		"name":        c.Name,
		"description": c.Description,
		"amount":      c.Amount,
		"start_date":  c.StartDate,
		"end_date":    c.EndDate,
		"status":      string(c.Status),
		"updated_at":  c.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

// SoftDelete flags the campaign as deleted; the document is kept.
func (r *CampaignRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := visible()
	filter["_id"] = id

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"is_deleted": true,
		"updated_at": at.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

// List runs the page query and the total count concurrently.
func (r *CampaignRepository) List(ctx context.Context, filter ports.CampaignFilter) ([]*domain.Campaign, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := listFilter(filter)

	var (
		docs  []campaignDocument
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.col.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("count campaigns: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		cur, err := r.col.Find(gctx, query, listOptions(filter))
		if err != nil {
			return fmt.Errorf("find campaigns: %w", err)
		}
		if err := cur.All(gctx, &docs); err != nil {
			return fmt.Errorf("decode campaigns: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	items := make([]*domain.Campaign, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, total, nil
}

// listFilter composes the visibility predicate with the optional status and
// search clauses. Search input is quoted so it always matches literally.
func listFilter(f ports.CampaignFilter) bson.M {
	query := visible()
	if f.Status != nil {
		query["status"] = string(*f.Status)
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

func listOptions(f ports.CampaignFilter) *options.FindOptions {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreated]
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	return options.Find().
		SetSort(bson.D{{Key: column, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.PageSize))
}

// EnsureIndexes creates the indexes backing list queries.
func (r *CampaignRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
