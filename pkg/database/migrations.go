package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"assetadmin/pkg/logger"
)

const migrationsCollection = "migrations"

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		logger:     log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Reverting migration: %s", migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updatedAt", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

// indexSet describes the secondary indexes of one collection.
type indexSet struct {
	collection string
	indexes    []mongo.IndexModel
}

func asc(fields ...string) mongo.IndexModel {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return mongo.IndexModel{Keys: keys}
}

func uniqueSparse(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
}

// Reference fields walked by the cascade engine are indexed so that the
// dependent lookups stay cheap.
func referenceIndexes() []indexSet {
	audit := []mongo.IndexModel{asc("addedBy"), asc("updatedBy")}
	with := func(extra ...mongo.IndexModel) []mongo.IndexModel {
		return append(append([]mongo.IndexModel{}, audit...), extra...)
	}

	return []indexSet{
		{"admins", with()},
		{"users", with()},
		{"assets", with(asc("sellerId"), asc("category"), asc("subCategory"))},
		{"assetcategories", with(asc("parentCategoryId"))},
		{"earnings", with(asc("userId"), asc("assetId"))},
		{"orders", with(asc("assetId"))},
		{"states", with()},
		{"wallettransactions", with(asc("fromwalletId"), asc("towalletId"))},
		{"roles", with(asc("code"))},
		{"projectroutes", with(asc("route_name", "method"), asc("uri", "method"))},
		{"routeroles", with(asc("routeId", "roleId"), asc("roleId"))},
		{"userroles", with(asc("userId"), asc("roleId"))},
	}
}

func createIndexSets(ctx context.Context, db *mongo.Database, sets []indexSet) error {
	for _, set := range sets {
		if _, err := db.Collection(set.collection).Indexes().CreateMany(ctx, set.indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", set.collection, err)
		}
	}
	return nil
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create reference indexes for cascade lookups",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexSets(ctx, db, referenceIndexes())
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				for _, set := range referenceIndexes() {
					if _, err := db.Collection(set.collection).Indexes().DropAll(ctx); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version:     2,
			Description: "Create login indexes on wallets and usertokens",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexSets(ctx, db, []indexSet{
					{"wallets", []mongo.IndexModel{
						uniqueSparse("walletAddress"),
						uniqueSparse("email"),
						asc("userId"),
						asc("resetPasswordLink.code"),
						asc("addedBy"),
						asc("updatedBy"),
					}},
					{"usertokens", []mongo.IndexModel{
						asc("token", "userId"),
						asc("userId"),
						asc("addedBy"),
						asc("updatedBy"),
					}},
				})
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				for _, name := range []string{"wallets", "usertokens"} {
					if _, err := db.Collection(name).Indexes().DropAll(ctx); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version:     3,
			Description: "Create activity log indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexSets(ctx, db, []indexSet{
					{"activitylogs", []mongo.IndexModel{
						asc("refId"),
						{Keys: bson.D{{Key: "createdAt", Value: -1}}},
					}},
				})
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection("activitylogs").Indexes().DropAll(ctx)
				return err
			},
		},
	}
}
